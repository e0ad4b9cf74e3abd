package model

import (
	"fmt"
	"strings"
)

// Category is one of the six note columns a finding can be filed under
type Category string

const (
	CategorySize       Category = "size"
	CategoryPrice      Category = "price"
	CategoryCatalogOps Category = "catalog-ops"
	CategoryPhoto      Category = "photo"
	CategoryContent    Category = "content"
	CategoryOther      Category = "other"
)

// Categories lists the note categories in spreadsheet write order
var Categories = []Category{
	CategoryPrice,
	CategorySize,
	CategoryCatalogOps,
	CategoryPhoto,
	CategoryContent,
	CategoryOther,
}

// Header returns the spreadsheet header text of the category's note column
func (c Category) Header() string {
	switch c {
	case CategorySize:
		return HeaderSizeNotes
	case CategoryPrice:
		return HeaderPriceNotes
	case CategoryCatalogOps:
		return HeaderCatalogueOps
	case CategoryPhoto:
		return HeaderPhotoStudio
	case CategoryContent:
		return HeaderContent
	case CategoryOther:
		return HeaderOther
	}
	return ""
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	return c.Header() != ""
}

// ParseCategory accepts the category name, case-insensitively
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Spreadsheet headers read or written by the engine
const (
	HeaderSizeNotes    = "Size Notes"
	HeaderPriceNotes   = "Price Notes"
	HeaderCatalogueOps = "Catalogue Ops"
	HeaderPhotoStudio  = "Photo studio"
	HeaderContent      = "WWMT Content"
	HeaderOther        = "Other"

	HeaderNotes       = "Notes"
	HeaderEcommName   = "Ecomm Name"
	HeaderFREcommName = "FR Ecomm Name"
	HeaderColour      = "Colour Description"
	HeaderSizeRun     = "Size Run"
	HeaderMDPID       = "MD PID"
	HeaderRegPID      = "REG PID"
	HeaderRegPrice    = "Reg Price"
	HeaderMDPrice     = "MD Price"
	HeaderImages      = "Images"
)
