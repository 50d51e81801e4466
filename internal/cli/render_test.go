package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devgpu/stackctl/internal/stack"
)

func TestPrintStatusShowsInstanceInfo(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, stack.Status{
		Name:  "dev-env",
		State: stack.StateCreateComplete,
		Instances: []stack.Instance{{
			InstanceID: "i-0abc",
			State:      "running",
			Type:       "g4dn.xlarge",
			PublicIP:   "54.10.20.30",
			PrivateIP:  "10.0.1.5",
		}},
		Outputs: map[string]string{
			stack.OutputPublicIP:   "54.10.20.30",
			stack.OutputSSHCommand: "ssh -i dev-key.pem ec2-user@54.10.20.30",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Stack dev-env status: CREATE_COMPLETE")
	assert.Contains(t, out, "Instance Info:")
	assert.Contains(t, out, "State: running")
	assert.Contains(t, out, "Type: g4dn.xlarge")
	assert.Contains(t, out, "Private IP: 10.0.1.5")
	assert.Contains(t, out, "SSHCommand: ssh -i dev-key.pem ec2-user@54.10.20.30")
}

func TestPrintStatusOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, stack.Status{Name: "dev-env", State: stack.StateDeleteInProgress})

	out := buf.String()
	assert.NotContains(t, out, "Instance Info:")
	assert.NotContains(t, out, "Stack Outputs:")
}
