// Package ec2 resolves EC2 instance ids into the details shown alongside
// stack status output.
package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/devgpu/stackctl/internal/stack"
)

// API is the subset of the EC2 SDK surface used by the client.
type API interface {
	DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error)
}

// Client wraps the EC2 API for instance lookups.
type Client struct {
	api API
}

// NewClient wraps an existing API implementation.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from a loaded AWS config.
func NewFromConfig(cfg aws.Config) *Client {
	return NewClient(awsec2.NewFromConfig(cfg))
}

// DescribeInstances returns details for the given instance ids.
func (c *Client) DescribeInstances(ctx context.Context, ids []string) ([]stack.Instance, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out, err := c.api.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
		InstanceIds: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeInstances: %w", err)
	}

	var instances []stack.Instance
	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			state := ""
			if inst.State != nil {
				state = string(inst.State.Name)
			}
			instances = append(instances, stack.Instance{
				InstanceID: aws.ToString(inst.InstanceId),
				State:      state,
				Type:       string(inst.InstanceType),
				PublicIP:   aws.ToString(inst.PublicIpAddress),
				PrivateIP:  aws.ToString(inst.PrivateIpAddress),
			})
		}
	}
	return instances, nil
}
