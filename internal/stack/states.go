// Package stack implements the lifecycle controller for the single
// CloudFormation stack that backs a GPU development environment.
package stack

import "strings"

// State is a stack status as reported by the CloudFormation control plane,
// plus the synthetic NOT_FOUND used when the stack does not exist.
type State string

const (
	StateNotFound State = "NOT_FOUND"

	StateCreateInProgress State = "CREATE_IN_PROGRESS"
	StateCreateComplete   State = "CREATE_COMPLETE"
	StateCreateFailed     State = "CREATE_FAILED"

	StateUpdateInProgress State = "UPDATE_IN_PROGRESS"
	StateUpdateComplete   State = "UPDATE_COMPLETE"

	StateDeleteInProgress State = "DELETE_IN_PROGRESS"
	StateDeleteComplete   State = "DELETE_COMPLETE"
	StateDeleteFailed     State = "DELETE_FAILED"

	StateRollbackInProgress       State = "ROLLBACK_IN_PROGRESS"
	StateRollbackComplete         State = "ROLLBACK_COMPLETE"
	StateRollbackFailed           State = "ROLLBACK_FAILED"
	StateUpdateRollbackInProgress State = "UPDATE_ROLLBACK_IN_PROGRESS"
	StateUpdateRollbackComplete   State = "UPDATE_ROLLBACK_COMPLETE"
	StateUpdateRollbackFailed     State = "UPDATE_ROLLBACK_FAILED"
)

// Terminal reports whether no further transition happens without a new
// user-initiated action.
func (s State) Terminal() bool {
	if s == StateNotFound {
		return true
	}
	str := string(s)
	return strings.HasSuffix(str, "_COMPLETE") || strings.HasSuffix(str, "_FAILED")
}

// Failure reports whether the state means the provider declared the
// operation unsuccessful. Rollback completion counts as failure: the stack
// is stable but the requested change was not applied.
func (s State) Failure() bool {
	str := string(s)
	return strings.HasSuffix(str, "_FAILED") ||
		s == StateRollbackComplete ||
		s == StateUpdateRollbackComplete
}

// InProgress reports whether the provider is still converging.
func (s State) InProgress() bool {
	return strings.HasSuffix(string(s), "_IN_PROGRESS")
}

// Status is a point-in-time observation of the stack. It is owned by the
// provider; the controller never caches it between invocations.
type Status struct {
	// Name is the stack name the observation belongs to.
	Name string
	// State is the provider-reported (or NOT_FOUND) state.
	State State
	// Reason carries the provider's diagnostic for failed or rolled back
	// operations, when one is attached.
	Reason string
	// Outputs maps template output keys (InstanceId, PublicIp, SSHCommand)
	// to their values. Empty until the stack reaches a *_COMPLETE state.
	Outputs map[string]string
	// Instances holds live details for the stack's EC2 instances, filled
	// in when the stack is in a healthy terminal state and an instance
	// describer is available.
	Instances []Instance
}

// Output returns the named output value or "" when absent.
func (st Status) Output(key string) string {
	if st.Outputs == nil {
		return ""
	}
	return st.Outputs[key]
}

// Well-known output keys produced by the environment template and the
// controller's own derivation.
const (
	OutputInstanceID = "InstanceId"
	OutputPublicIP   = "PublicIp"
	OutputSSHCommand = "SSHCommand"
)
