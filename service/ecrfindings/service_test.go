package ecrfindings

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/drewtwitchell/scancompare/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ecrImage = "123456789012.dkr.ecr.us-west-2.amazonaws.com/team/api:1.4.0"

type fakeLoader struct {
	region  string
	profile string
	err     error
}

func (f *fakeLoader) GetAWSCfg(_ context.Context, region, profile string) (aws.Config, error) {
	f.region, f.profile = region, profile
	return aws.Config{Region: region}, f.err
}

type fakeECR struct {
	pages  []*ecr.DescribeImageScanFindingsOutput
	inputs []*ecr.DescribeImageScanFindingsInput
	err    error
}

func (f *fakeECR) DescribeImageScanFindings(_ context.Context, in *ecr.DescribeImageScanFindingsInput, _ ...func(*ecr.Options)) (*ecr.DescribeImageScanFindingsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[len(f.inputs)-1]
	return page, nil
}

func newTestService(image string, client ECRClientAPI, loader ConfigLoader) Service {
	svc := NewService(image, "audit", loader).(*service)
	svc.newClient = func(aws.Config) ECRClientAPI { return client }
	return svc
}

func completeStatus() *ecrtypes.ImageScanStatus {
	return &ecrtypes.ImageScanStatus{Status: ecrtypes.ScanStatusComplete}
}

func TestParseImage(t *testing.T) {
	img, err := ParseImage(ecrImage)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", img.RegistryID)
	assert.Equal(t, "us-west-2", img.Region)
	assert.Equal(t, "team/api", img.Repository)
	assert.Equal(t, "1.4.0", img.Tag)
	assert.Empty(t, img.Digest)

	digest := "sha256:" + "a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4"
	img, err = ParseImage("123456789012.dkr.ecr.eu-west-1.amazonaws.com/api@" + digest)
	require.NoError(t, err)
	assert.Equal(t, digest, img.Digest)
	assert.Empty(t, img.Tag)

	img, err = ParseImage("123456789012.dkr.ecr.us-east-1.amazonaws.com/api")
	require.NoError(t, err)
	assert.Equal(t, "latest", img.Tag)

	_, err = ParseImage("nginx:latest")
	assert.ErrorIs(t, err, ErrNotECRImage)

	_, err = ParseImage("public.ecr.aws/nginx/nginx:1.25")
	assert.ErrorIs(t, err, ErrNotECRImage)

	_, err = ParseImage("UPPER/Case:tag")
	assert.Error(t, err)
}

func TestAvailability(t *testing.T) {
	svc := NewService(ecrImage, "", &fakeLoader{})
	assert.True(t, svc.Available())
	assert.Equal(t, "123456789012.dkr.ecr.us-west-2.amazonaws.com", svc.Path())
	assert.Equal(t, Name, svc.Name())

	svc = NewService("nginx:latest", "", &fakeLoader{})
	assert.False(t, svc.Available())
	assert.Empty(t, svc.Path())
}

func TestScanCollectsBasicAndEnhancedFindings(t *testing.T) {
	client := &fakeECR{pages: []*ecr.DescribeImageScanFindingsOutput{
		{
			ImageScanStatus: completeStatus(),
			ImageScanFindings: &ecrtypes.ImageScanFindings{
				Findings: []ecrtypes.ImageScanFinding{{
					Name:        aws.String("CVE-2023-4911"),
					Description: aws.String("buffer overflow in ld.so\nmore details"),
					Uri:         aws.String("https://security-tracker.debian.org/tracker/CVE-2023-4911"),
					Severity:    ecrtypes.FindingSeverityHigh,
					Attributes: []ecrtypes.Attribute{
						{Key: aws.String("package_name"), Value: aws.String("glibc")},
						{Key: aws.String("package_version"), Value: aws.String("2.36-9")},
						{Key: aws.String("CVSS3_VECTOR"), Value: aws.String("CVSS:3.1/AV:L/AC:L/PR:L/UI:N/S:U/C:H/I:H/A:H")},
						{Key: aws.String("CVSS3_SCORE"), Value: aws.String("7.8")},
					},
				}},
			},
			NextToken: aws.String("page-2"),
		},
		{
			ImageScanStatus: completeStatus(),
			ImageScanFindings: &ecrtypes.ImageScanFindings{
				EnhancedFindings: []ecrtypes.EnhancedImageScanFinding{{
					Severity: aws.String("CRITICAL"),
					Title:    aws.String("CVE-2023-45853 - zlib1g"),
					PackageVulnerabilityDetails: &ecrtypes.PackageVulnerabilityDetails{
						VulnerabilityId: aws.String("CVE-2023-45853"),
						SourceUrl:       aws.String("https://nvd.nist.gov/vuln/detail/CVE-2023-45853"),
						Cvss: []ecrtypes.CvssScore{
							{Version: aws.String("2.0"), BaseScore: 6.8, ScoringVector: aws.String("AV:N/AC:M/Au:N/C:P/I:P/A:P")},
							{Version: aws.String("3.1"), BaseScore: 9.8, ScoringVector: aws.String("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H")},
						},
						VulnerablePackages: []ecrtypes.VulnerablePackage{
							{Name: aws.String("zlib1g"), Version: aws.String("1:1.2.13.dfsg-1"), PackageManager: aws.String("OS")},
							{Name: aws.String("zlib1g-dev"), Version: aws.String("1:1.2.13.dfsg-1"), PackageManager: aws.String("OS"), FixedInVersion: aws.String("1:1.3")},
						},
					},
				}},
			},
		},
	}}
	loader := &fakeLoader{}
	svc := newTestService(ecrImage, client, loader)

	res, err := svc.Scan(context.Background(), ecrImage)
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", loader.region)
	assert.Equal(t, "audit", loader.profile)
	require.Len(t, client.inputs, 2)
	assert.Equal(t, "team/api", aws.ToString(client.inputs[0].RepositoryName))
	assert.Equal(t, "123456789012", aws.ToString(client.inputs[0].RegistryId))
	assert.Equal(t, "1.4.0", aws.ToString(client.inputs[0].ImageId.ImageTag))
	assert.Equal(t, "page-2", aws.ToString(client.inputs[1].NextToken))

	require.Len(t, res.Findings, 3)
	basic := res.Findings[0]
	assert.Equal(t, "CVE-2023-4911", basic.VulnerabilityID)
	assert.Equal(t, "glibc", basic.Package)
	assert.Equal(t, "2.36-9", basic.InstalledVersion)
	assert.Equal(t, model.SeverityHigh, basic.Severity)
	assert.Equal(t, 7.8, basic.CVSSScore)
	assert.Equal(t, "buffer overflow in ld.so", basic.Title)

	enhanced := res.Findings[2]
	assert.Equal(t, "CVE-2023-45853", enhanced.VulnerabilityID)
	assert.Equal(t, "zlib1g-dev", enhanced.Package)
	assert.Equal(t, "1:1.3", enhanced.FixedVersion)
	assert.Equal(t, "os", enhanced.PackageType)
	assert.Equal(t, model.SeverityCritical, enhanced.Severity)
	assert.Equal(t, 9.8, enhanced.CVSSScore)
}

func TestScanErrors(t *testing.T) {
	pending := &fakeECR{pages: []*ecr.DescribeImageScanFindingsOutput{{
		ImageScanStatus: &ecrtypes.ImageScanStatus{Status: ecrtypes.ScanStatusInProgress},
	}}}
	_, err := newTestService(ecrImage, pending, &fakeLoader{}).Scan(context.Background(), ecrImage)
	assert.ErrorIs(t, err, ErrScanIncomplete)

	failing := &fakeECR{err: errors.New("ScanNotFoundException")}
	_, err = newTestService(ecrImage, failing, &fakeLoader{}).Scan(context.Background(), ecrImage)
	assert.ErrorContains(t, err, "ScanNotFoundException")

	_, err = newTestService(ecrImage, &fakeECR{}, &fakeLoader{err: errors.New("no credentials")}).Scan(context.Background(), ecrImage)
	assert.ErrorContains(t, err, "no credentials")

	_, err = newTestService("nginx:latest", &fakeECR{}, &fakeLoader{}).Scan(context.Background(), "nginx:latest")
	assert.ErrorIs(t, err, ErrNotECRImage)
}
