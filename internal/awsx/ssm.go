package awsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMStore implements ParameterStore on AWS Systems Manager.
type SSMStore struct {
	client *ssm.Client
}

// NewSSMStore builds a parameter store client from an aws.Config.
func NewSSMStore(cfg aws.Config) *SSMStore {
	return &SSMStore{client: ssm.NewFromConfig(cfg)}
}

// Get fetches a parameter. A missing parameter returns found=false with
// a nil error so callers can treat absence as a normal state.
func (s *SSMStore) Get(ctx context.Context, name string, decrypt bool) (string, bool, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, nil
	}
	return *out.Parameter.Value, true, nil
}

// Put writes a parameter, overwriting any existing value. secure selects
// a SecureString (KMS-encrypted) parameter type.
func (s *SSMStore) Put(ctx context.Context, name, value string, secure bool) error {
	paramType := types.ParameterTypeString
	if secure {
		paramType = types.ParameterTypeSecureString
	}
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      paramType,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("put parameter %s: %w", name, err)
	}
	return nil
}
