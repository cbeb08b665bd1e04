package ecrfindings

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/drewtwitchell/scancompare/model"
)

// Name is the scanner name under which ECR findings are reported.
const Name = "ecr"

// ECRClientAPI is the subset of the ECR client used by the service.
type ECRClientAPI interface {
	DescribeImageScanFindings(ctx context.Context, params *ecr.DescribeImageScanFindingsInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImageScanFindingsOutput, error)
}

// ConfigLoader loads AWS configuration for a region and profile.
type ConfigLoader interface {
	GetAWSCfg(ctx context.Context, region string, profile string) (aws.Config, error)
}

// Image identifies an image stored in an ECR private registry.
type Image struct {
	RegistryID string
	Region     string
	Registry   string
	Repository string
	Tag        string
	Digest     string
}

// Service reads ECR scan findings. It satisfies scanner.Scanner.
type Service interface {
	Name() string
	Available() bool
	Path() string
	Version(ctx context.Context) (string, error)
	Scan(ctx context.Context, image string) (model.ScanResult, error)
}

type service struct {
	image     string
	parsed    *Image
	profile   string
	cfgLoader ConfigLoader
	newClient func(cfg aws.Config) ECRClientAPI
}
