package stack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Provider is the narrow view of the CloudFormation control plane the
// controller needs. Implementations return the error taxonomy of this
// package: NotFoundError, AlreadyExistsError, ProviderError.
type Provider interface {
	// DescribeStack returns the current stack status, with State set to
	// StateNotFound (and no error) when the stack does not exist.
	DescribeStack(ctx context.Context, name string) (Status, error)
	// CreateStack submits a new stack from the template body and parameters.
	CreateStack(ctx context.Context, name, templateBody string, params []TemplateParameter) error
	// UpdateStack submits a stack update. It returns false when the provider
	// reports that no changes would result.
	UpdateStack(ctx context.Context, name, templateBody string, params []TemplateParameter) (bool, error)
	// DeleteStack submits stack deletion.
	DeleteStack(ctx context.Context, name string) error
	// StackInstanceIDs lists physical EC2 instance ids owned by the stack.
	StackInstanceIDs(ctx context.Context, name string) ([]string, error)
	// StackEvents returns stack events newer than since, oldest first.
	StackEvents(ctx context.Context, name string, since time.Time) ([]Event, error)
}

// InstanceDescriber resolves EC2 instance ids into live instance details.
type InstanceDescriber interface {
	DescribeInstances(ctx context.Context, ids []string) ([]Instance, error)
}

// Event is a single stack resource event.
type Event struct {
	Timestamp time.Time
	LogicalID string
	Type      string
	Status    string
	Reason    string
}

// Instance holds the subset of EC2 instance details shown in status output.
type Instance struct {
	InstanceID string
	State      string
	Type       string
	PublicIP   string
	PrivateIP  string
}

// Controller drives the lifecycle of the single reserved stack. It holds no
// state between calls: every action re-queries the provider first.
type Controller struct {
	provider  Provider
	instances InstanceDescriber
	logger    *slog.Logger

	name         string
	templateBody string
	sshUser      string
	showEvents   bool

	waiter   Waiter
	progress io.Writer
}

// ControllerOptions configures a Controller. StackName is required; the
// rest fall back to sensible defaults.
type ControllerOptions struct {
	// StackName is the reserved name of the managed stack.
	StackName string
	// TemplateBody is the infrastructure template submitted on create/update.
	TemplateBody string
	// SSHUser is the login user in the derived SSH command.
	SSHUser string
	// PollInterval is the delay between status polls.
	PollInterval time.Duration
	// WaitBudget is the maximum time spent waiting for a terminal state.
	WaitBudget time.Duration
	// ShowEvents streams stack events to Progress during waits.
	ShowEvents bool
	// Progress receives textual progress; defaults to io.Discard.
	Progress io.Writer
	// Logger receives structured logs; defaults to slog.Default().
	Logger *slog.Logger
	// Sleep overrides the waiter's sleep function, for tests.
	Sleep func(time.Duration)
}

// NewController constructs a Controller for the given provider and options.
// The instance describer may be nil; status output then skips live instance
// details.
func NewController(provider Provider, instances InstanceDescriber, opts ControllerOptions) (*Controller, error) {
	if provider == nil {
		return nil, fmt.Errorf("stack controller requires a provider")
	}
	if opts.StackName == "" {
		return nil, fmt.Errorf("stack name must not be empty")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	sshUser := opts.SSHUser
	if sshUser == "" {
		sshUser = "ec2-user"
	}

	return &Controller{
		provider:     provider,
		instances:    instances,
		logger:       logger,
		name:         opts.StackName,
		templateBody: opts.TemplateBody,
		sshUser:      sshUser,
		showEvents:   opts.ShowEvents,
		waiter: Waiter{
			Interval: opts.PollInterval,
			Budget:   opts.WaitBudget,
			Sleep:    opts.Sleep,
		},
		progress: progress,
	}, nil
}

// Create provisions the stack and blocks until it reaches a terminal state.
// It fails with InvalidParameterError on malformed input, AlreadyExistsError
// when the reserved name is taken, OperationFailedError when the provider
// rolls back, and TimeoutError when the wait budget runs out.
func (c *Controller) Create(ctx context.Context, p Parameters) (Status, error) {
	p, err := validateCreate(p)
	if err != nil {
		return Status{Name: c.name}, err
	}

	c.logger.Info("creating stack", "stack", c.name, "my_ip", p.MyIP, "key_name", p.KeyName)
	if err := c.provider.CreateStack(ctx, c.name, c.templateBody, createParameters(p)); err != nil {
		return Status{Name: c.name}, err
	}

	st, err := c.wait(ctx, "create")
	if err != nil {
		return st, err
	}
	if err := c.checkFailure("create", st); err != nil {
		return st, err
	}
	return c.enrich(ctx, st, p.KeyName), nil
}

// Update applies the supplied parameters to an existing stack, keeping
// previous values for anything not supplied, and blocks until a terminal
// state. A provider report of "no updates required" is success.
func (c *Controller) Update(ctx context.Context, p Parameters) (Status, error) {
	current, err := c.provider.DescribeStack(ctx, c.name)
	if err != nil {
		return current, err
	}
	if current.State == StateNotFound {
		return current, &NotFoundError{StackName: c.name}
	}

	params, err := updateParameters(p)
	if err != nil {
		return current, err
	}

	c.logger.Info("updating stack", "stack", c.name, "state", current.State)
	changed, err := c.provider.UpdateStack(ctx, c.name, c.templateBody, params)
	if err != nil {
		return current, err
	}
	if !changed {
		c.logger.Info("no updates required", "stack", c.name)
		fmt.Fprintln(c.progress, "No updates required for the stack.")
		return c.enrich(ctx, current, p.KeyName), nil
	}

	st, err := c.wait(ctx, "update")
	if err != nil {
		return st, err
	}
	if err := c.checkFailure("update", st); err != nil {
		return st, err
	}
	return c.enrich(ctx, st, p.KeyName), nil
}

// Status performs a single non-blocking query. A missing stack yields
// StateNotFound without an error.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	st, err := c.provider.DescribeStack(ctx, c.name)
	if err != nil {
		return st, err
	}
	if st.State == StateNotFound {
		return st, nil
	}
	if st.State.Terminal() && !st.State.Failure() && st.State != StateDeleteComplete {
		st = c.enrich(ctx, st, "")
	}
	return st, nil
}

// Delete tears the stack down and blocks until deletion completes. Deleting
// a nonexistent stack is a no-op success, so repeated deletes are idempotent.
func (c *Controller) Delete(ctx context.Context) (Status, error) {
	current, err := c.provider.DescribeStack(ctx, c.name)
	if err != nil {
		return current, err
	}
	if current.State == StateNotFound {
		c.logger.Info("stack does not exist, nothing to delete", "stack", c.name)
		fmt.Fprintf(c.progress, "Stack %s does not exist.\n", c.name)
		return current, nil
	}

	c.logger.Info("deleting stack", "stack", c.name, "state", current.State)
	if err := c.provider.DeleteStack(ctx, c.name); err != nil {
		return current, err
	}

	st, err := c.wait(ctx, "delete")
	if err != nil {
		return st, err
	}
	if st.State == StateNotFound {
		// Gone from the control plane entirely; report the terminal
		// deletion state instead of fabricating NOT_FOUND semantics.
		st.State = StateDeleteComplete
	}
	if err := c.checkFailure("delete", st); err != nil {
		return st, err
	}
	return st, nil
}

// wait polls the stack until a terminal state, printing state transitions
// and, when enabled, new stack events.
func (c *Controller) wait(ctx context.Context, action string) (Status, error) {
	fmt.Fprintf(c.progress, "Waiting for stack %s to complete...\n", action)

	var lastState State
	lastEvent := time.Now().UTC().Add(-time.Minute)

	w := c.waiter
	w.OnPoll = func(st Status) {
		if st.State != lastState {
			fmt.Fprintf(c.progress, "  stack %s is %s\n", c.name, st.State)
			lastState = st.State
		}
		if c.showEvents {
			lastEvent = c.printEvents(ctx, lastEvent)
		}
		c.logger.Debug("polled stack", "stack", c.name, "state", st.State)
	}

	return w.Wait(ctx, action, func(ctx context.Context) (Status, error) {
		return c.provider.DescribeStack(ctx, c.name)
	})
}

// printEvents writes events newer than since and returns the newest
// timestamp seen. Event retrieval failures are logged, never fatal.
func (c *Controller) printEvents(ctx context.Context, since time.Time) time.Time {
	events, err := c.provider.StackEvents(ctx, c.name, since)
	if err != nil {
		c.logger.Debug("could not fetch stack events", "stack", c.name, "error", err)
		return since
	}
	for _, ev := range events {
		line := fmt.Sprintf("  %s %-22s %s %s", ev.Timestamp.Format("15:04:05"), ev.Status, ev.Type, ev.LogicalID)
		if ev.Reason != "" {
			line += " (" + ev.Reason + ")"
		}
		fmt.Fprintln(c.progress, line)
		if ev.Timestamp.After(since) {
			since = ev.Timestamp
		}
	}
	return since
}

// checkFailure converts a failed terminal state into an OperationFailedError
// carrying the provider's diagnostic.
func (c *Controller) checkFailure(action string, st Status) error {
	if !st.State.Failure() {
		return nil
	}
	return &OperationFailedError{
		Action:    action,
		StackName: c.name,
		State:     st.State,
		Reason:    st.Reason,
	}
}

// enrich fills in derived outputs: the ready-to-use SSH command and live
// instance details resolved through the stack's physical resources.
func (c *Controller) enrich(ctx context.Context, st Status, keyName string) Status {
	if c.instances != nil {
		ids, err := c.provider.StackInstanceIDs(ctx, c.name)
		if err != nil {
			c.logger.Debug("could not list stack instances", "stack", c.name, "error", err)
		} else if len(ids) > 0 {
			instances, err := c.instances.DescribeInstances(ctx, ids)
			if err != nil {
				c.logger.Debug("could not describe instances", "stack", c.name, "error", err)
			} else if len(instances) > 0 {
				st.Instances = instances
				if st.Outputs == nil {
					st.Outputs = make(map[string]string)
				}
				if st.Outputs[OutputInstanceID] == "" {
					st.Outputs[OutputInstanceID] = instances[0].InstanceID
				}
				if st.Outputs[OutputPublicIP] == "" && instances[0].PublicIP != "" {
					st.Outputs[OutputPublicIP] = instances[0].PublicIP
				}
			}
		}
	}

	if keyName != "" && st.Output(OutputSSHCommand) == "" {
		if ip := st.Output(OutputPublicIP); ip != "" {
			if st.Outputs == nil {
				st.Outputs = make(map[string]string)
			}
			st.Outputs[OutputSSHCommand] = fmt.Sprintf("ssh -i %s.pem %s@%s", keyName, c.sshUser, ip)
		}
	}

	return st
}
