package sheet

import (
	"errors"
	"fmt"

	"pdp-recon/internal/headers"
	"pdp-recon/internal/model"
)

// required columns; every other header is read when present
var required = []string{
	model.HeaderEcommName,
	model.HeaderColour,
	model.HeaderSizeRun,
	model.HeaderRegPrice,
}

// ParseRows turns the data rows of a grid into expected rows. Headers are
// resolved once up front so a missing column fails before any check runs.
// Rows without an Ecomm Name are skipped.
func ParseRows(rows [][]string, hm headers.Map, headerRows int) ([]model.ExpectedRow, error) {
	var missing []error
	for _, h := range required {
		if _, err := hm.Resolve(h, 0); err != nil {
			missing = append(missing, err)
		}
	}
	if !hm.Has(model.HeaderMDPID) && !hm.Has(model.HeaderRegPID) {
		missing = append(missing, fmt.Errorf("%w: %w: %q or %q",
			model.ErrConfiguration, model.ErrHeaderNotFound, model.HeaderMDPID, model.HeaderRegPID))
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	col := func(header string) int {
		c, err := hm.Column(header, 0)
		if err != nil {
			return -1
		}
		return c
	}
	var (
		nameCol    = col(model.HeaderEcommName)
		frNameCol  = col(model.HeaderFREcommName)
		colourCol  = col(model.HeaderColour)
		sizeCol    = col(model.HeaderSizeRun)
		mdPIDCol   = col(model.HeaderMDPID)
		regPIDCol  = col(model.HeaderRegPID)
		regCol     = col(model.HeaderRegPrice)
		mdPriceCol = col(model.HeaderMDPrice)
		imagesCol  = col(model.HeaderImages)
		notesCol   = col(model.HeaderNotes)
	)

	var result []model.ExpectedRow
	for rowNum := headerRows + 1; rowNum <= len(rows); rowNum++ {
		name := Cell(rows, rowNum, nameCol)
		if name == "" {
			continue
		}
		result = append(result, model.ExpectedRow{
			ProductID: rowNum - headerRows,
			RowNumber: rowNum,
			Name:      name,
			FRName:    Cell(rows, rowNum, frNameCol),
			Colour:    Cell(rows, rowNum, colourCol),
			SizeRun:   Cell(rows, rowNum, sizeCol),
			MDPID:     Cell(rows, rowNum, mdPIDCol),
			RegPID:    Cell(rows, rowNum, regPIDCol),
			RegPrice:  Cell(rows, rowNum, regCol),
			MDPrice:   Cell(rows, rowNum, mdPriceCol),
			Images:    Cell(rows, rowNum, imagesCol),
			Notes:     Cell(rows, rowNum, notesCol),
		})
	}
	return result, nil
}
