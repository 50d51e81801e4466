package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/devgpu/stackctl/internal/stack"
)

// printStatus writes the stack state, live instance details and outputs to
// out. The derived connection outputs (instance id, public IP, SSH command)
// are part of the outputs map.
func printStatus(out io.Writer, st stack.Status) {
	fmt.Fprintf(out, "Stack %s status: %s\n", st.Name, st.State)
	if st.Reason != "" {
		fmt.Fprintf(out, "  reason: %s\n", st.Reason)
	}

	if len(st.Instances) > 0 {
		fmt.Fprintln(out, "\nInstance Info:")
		for _, inst := range st.Instances {
			fmt.Fprintf(out, "  Instance ID: %s\n", inst.InstanceID)
			fmt.Fprintf(out, "  State: %s\n", inst.State)
			fmt.Fprintf(out, "  Type: %s\n", inst.Type)
			if inst.PublicIP != "" {
				fmt.Fprintf(out, "  Public IP: %s\n", inst.PublicIP)
			}
			if inst.PrivateIP != "" {
				fmt.Fprintf(out, "  Private IP: %s\n", inst.PrivateIP)
			}
		}
	}

	if len(st.Outputs) == 0 {
		return
	}

	keys := make([]string, 0, len(st.Outputs))
	for k := range st.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out, "\nStack Outputs:")
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, st.Outputs[k])
	}
}
