package download

import (
	"fmt"

	"github.com/tealeg/xlsx/v3"
)

// SheetSummary describes one worksheet of an Excel export.
type SheetSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Header  []string `json:"header,omitempty"`
}

// InspectExcel summarizes the worksheets of an Excel export.
func InspectExcel(data []byte) ([]SheetSummary, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	summaries := make([]SheetSummary, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		s := SheetSummary{
			Name:    sh.Name,
			Rows:    sh.MaxRow,
			Columns: sh.MaxCol,
		}
		if sh.MaxRow > 0 {
			for col := 0; col < sh.MaxCol; col++ {
				cell, err := sh.Cell(0, col)
				if err != nil {
					return nil, fmt.Errorf("sheet %s: %w", sh.Name, err)
				}
				s.Header = append(s.Header, cell.Value)
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
