package word

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"pdp-recon/internal/config"
	"pdp-recon/internal/model"

	"github.com/nguyenthenguyen/docx"
)

type WordExporter struct{}

func NewWordExporter() *WordExporter {
	return &WordExporter{}
}

func (e *WordExporter) Export(summary *model.Summary, cfg *config.Config) error {
	// 1. Load the custom template, or the built-in one
	var (
		templateBytes []byte
		err           error
	)
	if cfg.Output.WordTemplate != "" {
		templateBytes, err = os.ReadFile(cfg.Output.WordTemplate)
	} else {
		templateBytes, err = Template()
	}
	if err != nil {
		return fmt.Errorf("failed to read Word template: %w", err)
	}

	r, err := docx.ReadDocxFromMemory(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return fmt.Errorf("failed to open Word template: %w", err)
	}
	defer r.Close()

	doc := r.Editable()

	// 2. Replace Summary Placeholders
	doc.Replace(PlaceholderDate, summary.ReportDate, -1)
	doc.Replace(PlaceholderScope, scope(summary), -1)
	doc.Replace(PlaceholderProducts, fmt.Sprintf("%d", summary.TotalProducts), -1)

	// 3. Inject content (the library handles XML encoding)
	doc.Replace(PlaceholderContent, buildContent(summary), -1)

	if err := doc.WriteToFile(cfg.GetOutputPath("docx")); err != nil {
		return fmt.Errorf("failed to write Word document: %w", err)
	}

	return nil
}

func scope(summary *model.Summary) string {
	if summary.Section == "" && summary.Region == "" {
		return "all"
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", summary.Section, summary.Region))
}

// buildContent renders the findings as plain text
func buildContent(summary *model.Summary) string {
	var sb strings.Builder

	sb.WriteString("SUMMARY\n\n")
	sb.WriteString(fmt.Sprintf("  • Products With Notes: %d\n", summary.ProductsWithNotes))
	sb.WriteString(fmt.Sprintf("  • Incorrect Pricing: %d\n", len(summary.IncorrectPricing)))
	for _, c := range summary.CategoryCounts {
		sb.WriteString(fmt.Sprintf("  • %s: %d\n", c.Header, c.Count))
	}
	sb.WriteString("\n" + strings.Repeat("=", 80) + "\n\n")

	if len(summary.IncorrectPricing) > 0 {
		ids := make([]string, len(summary.IncorrectPricing))
		for i, id := range summary.IncorrectPricing {
			ids[i] = fmt.Sprintf("%d", id)
		}
		sb.WriteString("INCORRECT PRICING: " + strings.Join(ids, ", ") + "\n\n")
	}

	written := 0
	for _, fd := range summary.Findings {
		if !fd.HasNotes() {
			continue
		}
		if written > 0 {
			sb.WriteString(strings.Repeat("-", 80) + "\n")
		}
		sb.WriteString(fmt.Sprintf("[Product %d]\n", fd.ProductID))
		for _, c := range model.Categories {
			if note := strings.TrimSpace(fd.Note(c)); note != "" {
				sb.WriteString(fmt.Sprintf("%-15s %s\n", c.Header()+":", note))
			}
		}
		written++
	}
	if written == 0 {
		sb.WriteString("No findings.\n")
	}

	return sb.String()
}
