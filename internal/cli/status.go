package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/devgpu/stackctl/internal/stack"
)

// runStatus performs a single status query. A missing stack is reported on
// stdout and is not an error.
func runStatus(ctx context.Context, out io.Writer, ctrl *stack.Controller) error {
	st, err := ctrl.Status(ctx)
	if err != nil {
		return err
	}

	if st.State == stack.StateNotFound {
		fmt.Fprintf(out, "Stack %s does not exist.\n", st.Name)
		return nil
	}

	printStatus(out, st)
	return nil
}
