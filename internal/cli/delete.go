package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/devgpu/stackctl/internal/stack"
)

// runDelete tears the stack down. Deleting a nonexistent stack succeeds as
// a no-op.
func runDelete(ctx context.Context, out io.Writer, ctrl *stack.Controller) error {
	st, err := ctrl.Delete(ctx)
	if err != nil {
		return err
	}

	if st.State == stack.StateDeleteComplete {
		fmt.Fprintf(out, "Stack %s deleted successfully.\n", st.Name)
	}
	return nil
}
