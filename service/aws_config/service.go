// Package awsconfig loads AWS configuration for the ECR findings source.
package awsconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
)

// ErrMFARequired is returned when a profile needs an MFA code but no terminal is available.
var ErrMFARequired = errors.New("profile requires an MFA token but scancompare is running non-interactively")

// NewService creates a new AWS configuration service. MFA codes are only
// read from stdin when interactive is true.
func NewService(interactive bool) Service {
	return &service{interactive: interactive}
}

func (s *service) GetAWSCfg(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only override the SDK defaults (AWS_REGION, ~/.aws/config) when explicitly provided.
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	opts = append(opts, config.WithAssumeRoleCredentialOptions(func(options *stscreds.AssumeRoleOptions) {
		options.TokenProvider = s.tokenProvider()
	}))

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
	}

	// Resolve credentials now so an MFA prompt happens before the spinner starts.
	if cfg.Credentials != nil {
		if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
			return aws.Config{}, fmt.Errorf("failed to retrieve credentials: %w", err)
		}
	}

	return cfg, nil
}

func (s *service) tokenProvider() func() (string, error) {
	if s.interactive {
		return stscreds.StdinTokenProvider
	}
	return func() (string, error) {
		return "", ErrMFARequired
	}
}
