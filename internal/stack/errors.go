package stack

import (
	"errors"
	"fmt"
	"time"
)

// InvalidParameterError indicates malformed caller input. It is never
// retried and is surfaced before anything is submitted to the provider.
type InvalidParameterError struct {
	// Param is the offending parameter name.
	Param string
	// Reason explains why the value was rejected.
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e == nil {
		return "invalid parameter"
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// IsInvalidParameter reports whether err indicates malformed caller input.
func IsInvalidParameter(err error) bool {
	var target *InvalidParameterError
	return errors.As(err, &target)
}

// NotFoundError indicates the stack does not exist where the requested
// action requires it to.
type NotFoundError struct {
	// StackName is the reserved stack name that was queried.
	StackName string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "stack not found"
	}
	return fmt.Sprintf("stack %q does not exist", e.StackName)
}

// IsNotFound reports whether err indicates a missing stack.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// AlreadyExistsError indicates a create collided with an existing stack
// under the reserved name.
type AlreadyExistsError struct {
	// StackName is the reserved stack name that is already taken.
	StackName string
}

func (e *AlreadyExistsError) Error() string {
	if e == nil {
		return "stack already exists"
	}
	return fmt.Sprintf("stack %q already exists, use update instead", e.StackName)
}

// IsAlreadyExists reports whether err indicates the stack already exists.
func IsAlreadyExists(err error) bool {
	var target *AlreadyExistsError
	return errors.As(err, &target)
}

// TimeoutError indicates the wait budget was exhausted before the stack
// reached a terminal state. The underlying operation may still succeed
// server-side; the caller must re-check with a status query.
type TimeoutError struct {
	// Action is the operation that was being awaited.
	Action string
	// StackName is the stack being observed.
	StackName string
	// LastState is the last state observed before giving up.
	LastState State
	// Waited is the total time spent polling.
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return "wait timeout"
	}
	return fmt.Sprintf("%s of stack %q still %s after %s; the operation may still complete, re-check with --action status",
		e.Action, e.StackName, e.LastState, e.Waited)
}

// IsTimeout reports whether err indicates an exhausted wait budget.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// OperationFailedError indicates the provider declared the operation
// unsuccessful (a *_FAILED state or a completed rollback).
type OperationFailedError struct {
	// Action is the operation that failed.
	Action string
	// StackName is the stack the operation ran against.
	StackName string
	// State is the terminal state the stack landed in.
	State State
	// Reason is the provider-attached diagnostic, when available.
	Reason string
}

func (e *OperationFailedError) Error() string {
	if e == nil {
		return "stack operation failed"
	}
	msg := fmt.Sprintf("%s of stack %q failed: stack is %s", e.Action, e.StackName, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsOperationFailed reports whether err indicates a provider-declared failure.
func IsOperationFailed(err error) bool {
	var target *OperationFailedError
	return errors.As(err, &target)
}

// ProviderError wraps a transient control-plane failure (network, throttling,
// service error). The same call is safe to retry: all actions are idempotent
// with respect to the provider's own state machine.
type ProviderError struct {
	// Action is the operation during which the failure occurred.
	Action string
	// StackName is the stack the call addressed.
	StackName string
	// Err is the underlying SDK error.
	Err error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	return fmt.Sprintf("%s of stack %q: provider error: %v", e.Action, e.StackName, e.Err)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsProviderError reports whether err is a transient provider failure.
func IsProviderError(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}
