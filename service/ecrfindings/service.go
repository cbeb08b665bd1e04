// Package ecrfindings reads Amazon ECR image scan findings so they can be
// compared with local scanners.
package ecrfindings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/drewtwitchell/scancompare/model"
	"github.com/google/go-containerregistry/pkg/name"
)

var registryPattern = regexp.MustCompile(`^(\d{12})\.dkr\.ecr(?:-fips)?\.([a-z0-9-]+)\.amazonaws\.com(?:\.cn)?$`)

// ErrNotECRImage is returned when the image does not live in a private ECR registry.
var ErrNotECRImage = errors.New("image is not hosted in Amazon ECR")

// ErrScanIncomplete is returned when ECR has no finished scan for the image.
var ErrScanIncomplete = errors.New("ECR image scan is not complete")

// NewService creates an ECR findings source for image.
func NewService(image, profile string, cfgLoader ConfigLoader) Service {
	s := &service{
		image:     image,
		profile:   profile,
		cfgLoader: cfgLoader,
		newClient: func(cfg aws.Config) ECRClientAPI {
			return ecr.NewFromConfig(cfg)
		},
	}
	if parsed, err := ParseImage(image); err == nil {
		s.parsed = &parsed
	}
	return s
}

// ParseImage splits an ECR image reference into its parts.
func ParseImage(image string) (Image, error) {
	ref, err := name.ParseReference(image)
	if err != nil {
		return Image{}, fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	registry := ref.Context().RegistryStr()
	m := registryPattern.FindStringSubmatch(registry)
	if m == nil {
		return Image{}, fmt.Errorf("%s: %w", registry, ErrNotECRImage)
	}

	out := Image{
		RegistryID: m[1],
		Region:     m[2],
		Registry:   registry,
		Repository: ref.Context().RepositoryStr(),
	}
	switch r := ref.(type) {
	case name.Digest:
		out.Digest = r.DigestStr()
	case name.Tag:
		out.Tag = r.TagStr()
	}
	return out, nil
}

func (s *service) Name() string {
	return Name
}

func (s *service) Available() bool {
	return s.parsed != nil
}

func (s *service) Path() string {
	if s.parsed == nil {
		return ""
	}
	return s.parsed.Registry
}

func (s *service) Version(context.Context) (string, error) {
	return "aws-sdk-go-v2 " + aws.SDKVersion, nil
}

func (s *service) Scan(ctx context.Context, image string) (model.ScanResult, error) {
	result := model.ScanResult{Scanner: Name, Image: image}

	parsed := s.parsed
	if image != s.image || parsed == nil {
		p, err := ParseImage(image)
		if err != nil {
			return result, err
		}
		parsed = &p
	}

	started := time.Now()
	cfg, err := s.cfgLoader.GetAWSCfg(ctx, parsed.Region, s.profile)
	if err != nil {
		return result, err
	}

	findings, err := fetchFindings(ctx, s.newClient(cfg), *parsed)
	result.Duration = time.Since(started)
	if err != nil {
		return result, err
	}
	result.Findings = findings
	result.ScannerVersion, _ = s.Version(ctx)

	return result, nil
}

func fetchFindings(ctx context.Context, client ECRClientAPI, img Image) ([]model.Finding, error) {
	imageID := &ecrtypes.ImageIdentifier{}
	if img.Digest != "" {
		imageID.ImageDigest = aws.String(img.Digest)
	} else {
		imageID.ImageTag = aws.String(img.Tag)
	}

	paginator := ecr.NewDescribeImageScanFindingsPaginator(client, &ecr.DescribeImageScanFindingsInput{
		RegistryId:     aws.String(img.RegistryID),
		RepositoryName: aws.String(img.Repository),
		ImageId:        imageID,
	})

	var findings []model.Finding
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe ECR scan findings for %s: %w", img.Repository, err)
		}
		if page.ImageScanStatus != nil && !scanFinished(page.ImageScanStatus.Status) {
			return nil, fmt.Errorf("%w: status %s: %s", ErrScanIncomplete, page.ImageScanStatus.Status, aws.ToString(page.ImageScanStatus.Description))
		}
		if page.ImageScanFindings == nil {
			continue
		}
		for _, f := range page.ImageScanFindings.Findings {
			findings = append(findings, basicFinding(f))
		}
		for _, f := range page.ImageScanFindings.EnhancedFindings {
			findings = append(findings, enhancedFindings(f)...)
		}
	}

	return findings, nil
}

// scanFinished accepts basic scans that completed and enhanced scans that are
// continuously updated.
func scanFinished(status ecrtypes.ScanStatus) bool {
	return status == ecrtypes.ScanStatusComplete || status == ecrtypes.ScanStatusActive
}

func basicFinding(f ecrtypes.ImageScanFinding) model.Finding {
	attrs := make(map[string]string, len(f.Attributes))
	for _, a := range f.Attributes {
		attrs[aws.ToString(a.Key)] = aws.ToString(a.Value)
	}

	out := model.Finding{
		VulnerabilityID:  aws.ToString(f.Name),
		Package:          attrs["package_name"],
		InstalledVersion: attrs["package_version"],
		Severity:         model.NormalizeSeverity(string(f.Severity)),
		Title:            firstLine(aws.ToString(f.Description)),
		URL:              aws.ToString(f.Uri),
	}
	if vector := attrs["CVSS3_VECTOR"]; vector != "" {
		out.CVSSVector = vector
		out.CVSSScore, _ = strconv.ParseFloat(attrs["CVSS3_SCORE"], 64)
	}
	return out
}

func enhancedFindings(f ecrtypes.EnhancedImageScanFinding) []model.Finding {
	details := f.PackageVulnerabilityDetails
	if details == nil {
		return nil
	}

	base := model.Finding{
		VulnerabilityID: aws.ToString(details.VulnerabilityId),
		Severity:        model.NormalizeSeverity(aws.ToString(f.Severity)),
		Title:           aws.ToString(f.Title),
		URL:             aws.ToString(details.SourceUrl),
	}
	for _, c := range details.Cvss {
		if strings.HasPrefix(aws.ToString(c.Version), "3") {
			base.CVSSVector = aws.ToString(c.ScoringVector)
			base.CVSSScore = c.BaseScore
			break
		}
	}

	if len(details.VulnerablePackages) == 0 {
		return []model.Finding{base}
	}

	out := make([]model.Finding, 0, len(details.VulnerablePackages))
	for _, p := range details.VulnerablePackages {
		finding := base
		finding.Package = aws.ToString(p.Name)
		finding.InstalledVersion = aws.ToString(p.Version)
		finding.PackageType = strings.ToLower(aws.ToString(p.PackageManager))
		finding.FixedVersion = aws.ToString(p.FixedInVersion)
		out = append(out, finding)
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
