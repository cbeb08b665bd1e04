// Package awssts resolves the AWS caller identity for the doctor command.
package awssts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// NewService creates a new STS service.
func NewService(awsconfig aws.Config) Service {
	return newService(sts.NewFromConfig(awsconfig))
}

func newService(client STSClientAPI) Service {
	return &service{client: client}
}

func (s *service) Identity(ctx context.Context) (Identity, error) {
	out, err := s.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out.Account == nil {
		return Identity{}, fmt.Errorf("unable to resolve account ID")
	}
	return Identity{Account: aws.ToString(out.Account), ARN: aws.ToString(out.Arn)}, nil
}
