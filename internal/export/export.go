// Package export writes collection records to spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeops/storectl/internal/retail"
	"github.com/xuri/excelize/v2"
)

const (
	// excel caps sheet names at 31 characters
	maxSheetName = 31
	columnWidth  = 18
	dateFormat   = "yyyy-mm-dd"
	moneyFormat  = 4 // built-in "#,##0.00"
)

type styles struct {
	header, date, money int
}

// Write renders records as a single sheet workbook to w. Money and
// quantities become numeric cells and dates become date cells so the sheet
// can be sorted and summed.
func Write(w io.Writer, sheet string, headers []string, records []retail.Record) error {
	f, err := Workbook(sheet, headers, records)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Workbook builds the workbook Write serializes.
func Workbook(sheet string, headers []string, records []retail.Record) (*excelize.File, error) {
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}

	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet %q: %w", sheet, err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, err
		}
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, sheet, st, headers, records); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	}); err != nil {
		return st, err
	}
	format := dateFormat
	if st.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return st, err
	}
	st.money, err = f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	return st, err
}

func writeSheet(f *excelize.File, sheet string, st styles, headers []string, records []retail.Record) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
	}

	for i, r := range records {
		for col, value := range r.Cells() {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			v, style := cellValue(value, st)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if style != 0 {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}

	if len(headers) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellValue(v any, st styles) (any, int) {
	switch c := v.(type) {
	case retail.ID:
		return string(c), 0
	case retail.Money:
		return c.InexactFloat64(), st.money
	case decimal.Decimal:
		return c.InexactFloat64(), 0
	case retail.Date:
		if c.IsZero() {
			return "", 0
		}
		return c.Time.UTC().Truncate(24 * time.Hour), st.date
	case fmt.Stringer:
		return c.String(), 0
	default:
		return v, 0
	}
}
