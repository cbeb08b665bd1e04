package compare

import "github.com/drewtwitchell/scancompare/model"

// Service merges scan results from several scanners into one comparison.
type Service interface {
	Compare(image string, results []model.ScanResult) model.Comparison
}

type service struct{}

// rowKey identifies one vulnerability in one installed package.
type rowKey struct {
	id      string
	pkg     string
	version string
}

type baseScorer interface {
	BaseScore() float64
}
