package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/devgpu/stackctl/internal/stack"
)

// runUpdate applies the supplied parameters to the existing stack, keeping
// previous values for anything not supplied, and prints the result.
func runUpdate(ctx context.Context, out io.Writer, ctrl *stack.Controller, params stack.Parameters) error {
	st, err := ctrl.Update(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Stack %s updated successfully.\n", st.Name)
	printStatus(out, st)
	return nil
}
