package html

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"pdp-recon/internal/config"
	"pdp-recon/internal/model"
)

type HTMLExporter struct{}

func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// NoteRow is one product's notes as rendered in the report table
type NoteRow struct {
	ProductID      int
	PricingCorrect bool
	Notes          []NoteCell
}

// NoteCell is one category column of a NoteRow
type NoteCell struct {
	Category model.Category
	Text     string
}

// FindingsReportData feeds FindingsReportTemplate
type FindingsReportData struct {
	*model.Summary
	Headers []string
	Rows    []NoteRow
}

func (e *HTMLExporter) Export(summary *model.Summary, cfg *config.Config) error {
	data := FindingsReportData{Summary: summary}
	for _, c := range model.Categories {
		data.Headers = append(data.Headers, c.Header())
	}

	// Only products with something to say are listed
	for _, fd := range summary.Findings {
		if !fd.HasNotes() && fd.PricingCorrect {
			continue
		}
		row := NoteRow{ProductID: fd.ProductID, PricingCorrect: fd.PricingCorrect}
		for _, c := range model.Categories {
			row.Notes = append(row.Notes, NoteCell{Category: c, Text: strings.TrimSpace(fd.Note(c))})
		}
		data.Rows = append(data.Rows, row)
	}

	// Create Output
	f, err := os.Create(cfg.GetOutputPath("html"))
	if err != nil {
		return err
	}
	defer f.Close()

	tmpl, err := template.New("findings-report").Funcs(template.FuncMap{
		"categoryClass": categoryClass,
	}).Parse(FindingsReportTemplate)
	if err != nil {
		return err
	}

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

// categoryClass returns the CSS class for a note column
func categoryClass(c model.Category) string {
	switch c {
	case model.CategoryPrice:
		return "cat-price"
	case model.CategorySize:
		return "cat-size"
	case model.CategoryCatalogOps:
		return "cat-catalog"
	case model.CategoryPhoto:
		return "cat-photo"
	default:
		return "cat-default"
	}
}
