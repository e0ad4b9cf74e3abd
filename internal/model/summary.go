package model

import "sort"

// CategoryCount is the number of products with notes in one category
type CategoryCount struct {
	Category Category `json:"category" yaml:"category"`
	Header   string   `json:"header" yaml:"header"`
	Count    int      `json:"count" yaml:"count"`
}

// Summary is the report view of a findings snapshot
type Summary struct {
	ReportDate string  `json:"report_date" yaml:"report_date"`
	Section    Section `json:"section,omitempty" yaml:"section,omitempty"`
	Region     Region  `json:"region,omitempty" yaml:"region,omitempty"`

	TotalProducts     int             `json:"total_products" yaml:"total_products"`
	ProductsWithNotes int             `json:"products_with_notes" yaml:"products_with_notes"`
	IncorrectPricing  []int           `json:"incorrect_pricing" yaml:"incorrect_pricing"`
	CategoryCounts    []CategoryCount `json:"category_counts" yaml:"category_counts"`
	Findings          []Finding       `json:"findings" yaml:"findings"`
}

// NewSummary counts a findings snapshot. Findings are ordered by product id.
func NewSummary(date string, section Section, region Region, findings []Finding) *Summary {
	s := &Summary{
		ReportDate:       date,
		Section:          section,
		Region:           region,
		TotalProducts:    len(findings),
		IncorrectPricing: []int{},
		Findings:         append([]Finding(nil), findings...),
	}
	sort.Slice(s.Findings, func(i, j int) bool {
		return s.Findings[i].ProductID < s.Findings[j].ProductID
	})

	counts := make(map[Category]int)
	for i := range s.Findings {
		f := &s.Findings[i]
		if f.HasNotes() {
			s.ProductsWithNotes++
		}
		if !f.PricingCorrect {
			s.IncorrectPricing = append(s.IncorrectPricing, f.ProductID)
		}
		for _, c := range Categories {
			if f.Note(c) != "" {
				counts[c]++
			}
		}
	}
	for _, c := range Categories {
		s.CategoryCounts = append(s.CategoryCounts, CategoryCount{Category: c, Header: c.Header(), Count: counts[c]})
	}
	return s
}
