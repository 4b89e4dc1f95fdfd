// Package awsx wraps the AWS SDK behind narrow interfaces so decision
// logic elsewhere can be exercised with fakes. Each interface covers
// exactly the calls boxstrap makes, nothing more.
package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// CallerIdentity is the result of an identity check.
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// Identity answers "who am I" against the cloud provider.
type Identity interface {
	WhoAmI(ctx context.Context) (CallerIdentity, error)
}

// ParameterStore is get/put access to the remote parameter hierarchy.
type ParameterStore interface {
	// Get returns the value and whether the parameter exists. A missing
	// parameter is not an error.
	Get(ctx context.Context, name string, decrypt bool) (string, bool, error)
	Put(ctx context.Context, name, value string, secure bool) error
}

// StackInfo is the observable state of a deployed stack.
type StackInfo struct {
	Name    string
	Status  string
	Outputs map[string]string
}

// StackService deploys and inspects infrastructure stacks. Provisioning
// semantics stay with the provider; this interface only submits and
// observes.
type StackService interface {
	Deploy(ctx context.Context, name, templateBody string, params map[string]string) (StackInfo, error)
	Describe(ctx context.Context, name string) (StackInfo, error)
}

// LoadConfig builds an aws.Config for the given region, using the
// standard credential chain. profile may be empty.
func LoadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// HasCredentials reports whether the standard chain can produce any
// credentials at all. Used to decide between "run" and "graceful skip".
func HasCredentials(ctx context.Context, cfg aws.Config) bool {
	_, err := cfg.Credentials.Retrieve(ctx)
	return err == nil
}
