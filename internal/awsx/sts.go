package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSIdentity implements Identity with STS GetCallerIdentity.
type STSIdentity struct {
	client *sts.Client
}

// NewSTSIdentity builds an identity checker from an aws.Config.
func NewSTSIdentity(cfg aws.Config) *STSIdentity {
	return &STSIdentity{client: sts.NewFromConfig(cfg)}
}

// WhoAmI calls GetCallerIdentity and flattens the response.
func (s *STSIdentity) WhoAmI(ctx context.Context) (CallerIdentity, error) {
	out, err := s.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("get caller identity: %w", err)
	}
	return CallerIdentity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
