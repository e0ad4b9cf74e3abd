package report

import (
	"strings"

	"pdp-recon/internal/report/html"
	"pdp-recon/internal/report/word"
)

// GetExporters returns a list of Exporters based on requested formats.
// Unknown formats are skipped; the caller decides what an empty list means.
func GetExporters(formats []string) []Exporter {
	exporters := []Exporter{}
	seen := make(map[string]bool)

	for _, fmtStr := range formats {
		fmtStr = strings.ToLower(strings.TrimSpace(fmtStr))
		switch fmtStr {
		case "xlsx":
			fmtStr = "excel"
		case "docx":
			fmtStr = "word"
		case "yml":
			fmtStr = "yaml"
		}
		if seen[fmtStr] {
			continue
		}
		seen[fmtStr] = true

		switch fmtStr {
		case "excel":
			exporters = append(exporters, NewExcelExporter())
		case "html":
			exporters = append(exporters, html.NewHTMLExporter())
		case "word":
			exporters = append(exporters, word.NewWordExporter())
		case "json":
			exporters = append(exporters, NewJSONExporter())
		case "yaml":
			exporters = append(exporters, NewYAMLExporter())
		}
	}

	return exporters
}
