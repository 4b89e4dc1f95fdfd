package awsx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// stackWaitInterval and stackWaitAttempts bound the deploy wait loop
// (30 minutes ceiling, matching slow KMS/IAM stack operations).
const (
	stackWaitInterval = 15 * time.Second
	stackWaitAttempts = 120
)

// CFNStacks implements StackService on CloudFormation.
type CFNStacks struct {
	client *cloudformation.Client
}

// NewCFNStacks builds a stack service from an aws.Config.
func NewCFNStacks(cfg aws.Config) *CFNStacks {
	return &CFNStacks{client: cloudformation.NewFromConfig(cfg)}
}

// Deploy creates the stack, or updates it when it already exists. An
// update with no changes is reported as success with the current state.
// Blocks until the stack settles or the wait budget is exhausted.
func (c *CFNStacks) Deploy(ctx context.Context, name, templateBody string, params map[string]string) (StackInfo, error) {
	cfnParams := make([]types.Parameter, 0, len(params))
	for k, v := range params {
		cfnParams = append(cfnParams, types.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(v),
		})
	}
	capabilities := []types.Capability{types.CapabilityCapabilityNamedIam}

	_, err := c.client.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Parameters:   cfnParams,
		Capabilities: capabilities,
	})
	if err != nil {
		var exists *types.AlreadyExistsException
		if !errors.As(err, &exists) {
			return StackInfo{}, fmt.Errorf("create stack %s: %w", name, err)
		}
		_, err = c.client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
			StackName:    aws.String(name),
			TemplateBody: aws.String(templateBody),
			Parameters:   cfnParams,
			Capabilities: capabilities,
		})
		if err != nil {
			// An update with nothing to do is a steady state, not a failure.
			if strings.Contains(err.Error(), "No updates are to be performed") {
				return c.Describe(ctx, name)
			}
			return StackInfo{}, fmt.Errorf("update stack %s: %w", name, err)
		}
	}

	return c.waitSettled(ctx, name)
}

// Describe returns current status and outputs for a stack.
func (c *CFNStacks) Describe(ctx context.Context, name string) (StackInfo, error) {
	out, err := c.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		return StackInfo{}, fmt.Errorf("describe stack %s: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return StackInfo{}, fmt.Errorf("stack %s not found", name)
	}
	stack := out.Stacks[0]

	info := StackInfo{
		Name:    name,
		Status:  string(stack.StackStatus),
		Outputs: make(map[string]string, len(stack.Outputs)),
	}
	for _, o := range stack.Outputs {
		info.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return info, nil
}

// waitSettled polls DescribeStacks until the stack leaves IN_PROGRESS.
func (c *CFNStacks) waitSettled(ctx context.Context, name string) (StackInfo, error) {
	for attempt := 0; attempt < stackWaitAttempts; attempt++ {
		info, err := c.Describe(ctx, name)
		if err != nil {
			return StackInfo{}, err
		}
		if !strings.HasSuffix(info.Status, "_IN_PROGRESS") {
			if strings.HasSuffix(info.Status, "_COMPLETE") && !strings.Contains(info.Status, "ROLLBACK") {
				return info, nil
			}
			return info, fmt.Errorf("stack %s settled in %s", name, info.Status)
		}
		select {
		case <-ctx.Done():
			return StackInfo{}, ctx.Err()
		case <-time.After(stackWaitInterval):
		}
	}
	return StackInfo{}, fmt.Errorf("stack %s still in progress after %s", name,
		time.Duration(stackWaitAttempts)*stackWaitInterval)
}
