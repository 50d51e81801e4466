// Package cloudformation wraps the CloudFormation control-plane API behind
// the controller's provider interface and maps SDK failures onto the stack
// error taxonomy.
package cloudformation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"

	"github.com/devgpu/stackctl/internal/stack"
)

// API is the subset of the CloudFormation SDK surface used by the client.
type API interface {
	CreateStack(ctx context.Context, params *awscfn.CreateStackInput, optFns ...func(*awscfn.Options)) (*awscfn.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *awscfn.UpdateStackInput, optFns ...func(*awscfn.Options)) (*awscfn.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *awscfn.DeleteStackInput, optFns ...func(*awscfn.Options)) (*awscfn.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *awscfn.DescribeStacksInput, optFns ...func(*awscfn.Options)) (*awscfn.DescribeStacksOutput, error)
	DescribeStackResources(ctx context.Context, params *awscfn.DescribeStackResourcesInput, optFns ...func(*awscfn.Options)) (*awscfn.DescribeStackResourcesOutput, error)
	DescribeStackEvents(ctx context.Context, params *awscfn.DescribeStackEventsInput, optFns ...func(*awscfn.Options)) (*awscfn.DescribeStackEventsOutput, error)
	ValidateTemplate(ctx context.Context, params *awscfn.ValidateTemplateInput, optFns ...func(*awscfn.Options)) (*awscfn.ValidateTemplateOutput, error)
}

// Client adapts the raw SDK API to the controller's Provider contract.
type Client struct {
	api API
}

// NewClient wraps an existing API implementation, typically a mock in tests.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from a loaded AWS config.
func NewFromConfig(cfg aws.Config) *Client {
	return NewClient(awscfn.NewFromConfig(cfg))
}

// stackCapabilities are required because the template creates IAM resources
// for the instance profile.
var stackCapabilities = []types.Capability{
	types.CapabilityCapabilityIam,
	types.CapabilityCapabilityNamedIam,
}

// DescribeStack returns the current status of the named stack, reporting
// StateNotFound without an error when the stack does not exist.
func (c *Client) DescribeStack(ctx context.Context, name string) (stack.Status, error) {
	out, err := c.api.DescribeStacks(ctx, &awscfn.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isDoesNotExist(err) {
			return stack.Status{Name: name, State: stack.StateNotFound}, nil
		}
		return stack.Status{Name: name}, &stack.ProviderError{Action: "describe", StackName: name, Err: err}
	}
	if len(out.Stacks) == 0 {
		return stack.Status{Name: name, State: stack.StateNotFound}, nil
	}

	s := out.Stacks[0]
	st := stack.Status{
		Name:   name,
		State:  stack.State(s.StackStatus),
		Reason: aws.ToString(s.StackStatusReason),
	}
	if len(s.Outputs) > 0 {
		st.Outputs = make(map[string]string, len(s.Outputs))
		for _, o := range s.Outputs {
			st.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
		}
	}
	return st, nil
}

// CreateStack submits a new stack. The provider rolls back on failure.
func (c *Client) CreateStack(ctx context.Context, name, templateBody string, params []stack.TemplateParameter) error {
	_, err := c.api.CreateStack(ctx, &awscfn.CreateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Parameters:   toSDKParameters(params),
		Capabilities: stackCapabilities,
		OnFailure:    types.OnFailureRollback,
	})
	if err != nil {
		var exists *types.AlreadyExistsException
		if errors.As(err, &exists) {
			return &stack.AlreadyExistsError{StackName: name}
		}
		return &stack.ProviderError{Action: "create", StackName: name, Err: err}
	}
	return nil
}

// UpdateStack submits a stack update. It returns false when the provider
// reports that the update would change nothing.
func (c *Client) UpdateStack(ctx context.Context, name, templateBody string, params []stack.TemplateParameter) (bool, error) {
	_, err := c.api.UpdateStack(ctx, &awscfn.UpdateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Parameters:   toSDKParameters(params),
		Capabilities: stackCapabilities,
	})
	if err != nil {
		if isNoUpdates(err) {
			return false, nil
		}
		if isDoesNotExist(err) {
			return false, &stack.NotFoundError{StackName: name}
		}
		return false, &stack.ProviderError{Action: "update", StackName: name, Err: err}
	}
	return true, nil
}

// DeleteStack submits stack deletion. Deleting an already deleted stack is
// accepted by the provider, so no not-found mapping is needed here.
func (c *Client) DeleteStack(ctx context.Context, name string) error {
	_, err := c.api.DeleteStack(ctx, &awscfn.DeleteStackInput{
		StackName: aws.String(name),
	})
	if err != nil {
		return &stack.ProviderError{Action: "delete", StackName: name, Err: err}
	}
	return nil
}

// StackInstanceIDs lists physical ids of EC2 instances owned by the stack.
func (c *Client) StackInstanceIDs(ctx context.Context, name string) ([]string, error) {
	out, err := c.api.DescribeStackResources(ctx, &awscfn.DescribeStackResourcesInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isDoesNotExist(err) {
			return nil, nil
		}
		return nil, &stack.ProviderError{Action: "describe resources", StackName: name, Err: err}
	}

	var ids []string
	for _, res := range out.StackResources {
		if aws.ToString(res.ResourceType) == "AWS::EC2::Instance" && res.PhysicalResourceId != nil {
			ids = append(ids, aws.ToString(res.PhysicalResourceId))
		}
	}
	return ids, nil
}

// StackEvents returns events newer than since in chronological order. Only
// the first page is consulted; during an active operation the newest events
// are on it.
func (c *Client) StackEvents(ctx context.Context, name string, since time.Time) ([]stack.Event, error) {
	out, err := c.api.DescribeStackEvents(ctx, &awscfn.DescribeStackEventsInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isDoesNotExist(err) {
			return nil, nil
		}
		return nil, &stack.ProviderError{Action: "describe events", StackName: name, Err: err}
	}

	var events []stack.Event
	for _, ev := range out.StackEvents {
		if ev.Timestamp == nil || !ev.Timestamp.After(since) {
			continue
		}
		events = append(events, stack.Event{
			Timestamp: *ev.Timestamp,
			LogicalID: aws.ToString(ev.LogicalResourceId),
			Type:      aws.ToString(ev.ResourceType),
			Status:    string(ev.ResourceStatus),
			Reason:    aws.ToString(ev.ResourceStatusReason),
		})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

// ValidateTemplate asks the provider to syntax-check the template body.
func (c *Client) ValidateTemplate(ctx context.Context, templateBody string) error {
	_, err := c.api.ValidateTemplate(ctx, &awscfn.ValidateTemplateInput{
		TemplateBody: aws.String(templateBody),
	})
	if err != nil {
		return &stack.ProviderError{Action: "validate template", StackName: "", Err: err}
	}
	return nil
}

// toSDKParameters converts controller parameters to the wire format,
// preserving the use-previous-value merge policy.
func toSDKParameters(params []stack.TemplateParameter) []types.Parameter {
	out := make([]types.Parameter, 0, len(params))
	for _, p := range params {
		sdkParam := types.Parameter{ParameterKey: aws.String(p.Key)}
		if p.UsePrevious {
			sdkParam.UsePreviousValue = aws.Bool(true)
		} else {
			sdkParam.ParameterValue = aws.String(p.Value)
		}
		out = append(out, sdkParam)
	}
	return out
}

// isDoesNotExist matches the ValidationError the provider raises for
// operations against a missing stack.
func isDoesNotExist(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

// isNoUpdates matches the ValidationError raised when an update would be a
// no-op.
func isNoUpdates(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
}
