package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/devgpu/stackctl/internal/aws/cloudformation"
	"github.com/devgpu/stackctl/internal/stack"
)

// runCreate validates the template, provisions the stack and prints the
// resulting outputs.
func runCreate(ctx context.Context, out io.Writer, ctrl *stack.Controller, cfn *cloudformation.Client, templateBody string, params stack.Parameters) error {
	if err := cfn.ValidateTemplate(ctx, templateBody); err != nil {
		return err
	}

	st, err := ctrl.Create(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Stack %s created successfully.\n", st.Name)
	printStatus(out, st)
	return nil
}
