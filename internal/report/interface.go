package report

import (
	"pdp-recon/internal/config"
	"pdp-recon/internal/model"
)

// Exporter is the unified interface for all report formats
type Exporter interface {
	Export(summary *model.Summary, cfg *config.Config) error
}
