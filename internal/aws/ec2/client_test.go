package ec2

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type mockAPI struct {
	describeInstancesFunc func(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error)
}

func (m *mockAPI) DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error) {
	return m.describeInstancesFunc(ctx, params, optFns...)
}

func TestDescribeInstances(t *testing.T) {
	mock := &mockAPI{
		describeInstancesFunc: func(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error) {
			return &awsec2.DescribeInstancesOutput{
				Reservations: []types.Reservation{{
					Instances: []types.Instance{{
						InstanceId:       awssdk.String("i-0abc"),
						InstanceType:     types.InstanceTypeG4dnXlarge,
						State:            &types.InstanceState{Name: types.InstanceStateNameRunning},
						PublicIpAddress:  awssdk.String("54.10.20.30"),
						PrivateIpAddress: awssdk.String("10.0.1.5"),
					}},
				}},
			}, nil
		},
	}

	instances, err := NewClient(mock).DescribeInstances(context.Background(), []string{"i-0abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	inst := instances[0]
	if inst.InstanceID != "i-0abc" || inst.State != "running" || inst.Type != "g4dn.xlarge" {
		t.Errorf("unexpected instance: %+v", inst)
	}
	if inst.PublicIP != "54.10.20.30" || inst.PrivateIP != "10.0.1.5" {
		t.Errorf("unexpected addresses: %+v", inst)
	}
}

func TestDescribeInstancesEmpty(t *testing.T) {
	instances, err := NewClient(&mockAPI{}).DescribeInstances(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("expected no instances, got %d", len(instances))
	}
}
