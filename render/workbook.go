// Package render writes reports as styled Excel workbooks.
package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pageperf/api/models"
)

const (
	headerFill    = "336A90"
	highlightFill = "F25454"

	numFmtGeneral = 0
	numFmtInteger = 1
	numFmtFloat   = 2
	numFmtPercent = 10
)

type kind int

const (
	text kind = iota
	integer
	decimal
	percent
)

type column struct {
	header string
	kind   kind
}

type table struct {
	name      string
	columns   []column
	rows      [][]any
	highlight func(row int) bool
}

type styleKey struct {
	kind      kind
	highlight bool
}

type writer struct {
	f      *excelize.File
	header int
	styles map[styleKey]int
}

// WriteReport writes the seven report sheets to w as an .xlsx workbook.
func WriteReport(w io.Writer, r *models.Report) error {
	return write(w, reportTables(r))
}

// WriteRawDatasets writes both cleaned comparison periods for inspection.
func WriteRawDatasets(w io.Writer, previous, current []models.CleanedEvent) error {
	return write(w, []table{
		rawTable("previous_raw_results", previous),
		rawTable("current_raw_results", current),
	})
}

func write(w io.Writer, tables []table) error {
	f := excelize.NewFile()
	defer f.Close()

	wr := &writer{f: f, styles: make(map[styleKey]int)}
	var err error
	wr.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 6}, {Type: "top", Color: "000000", Style: 6}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			err = f.SetSheetName("Sheet1", t.name)
		} else {
			_, err = f.NewSheet(t.name)
		}
		if err != nil {
			return fmt.Errorf("sheet %s: %w", t.name, err)
		}
		if err := wr.writeTable(t); err != nil {
			return fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (wr *writer) style(k kind, highlight bool) (int, error) {
	key := styleKey{k, highlight}
	if id, ok := wr.styles[key]; ok {
		return id, nil
	}
	s := &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "right"}}
	switch k {
	case text:
		s.NumFmt = numFmtGeneral
		s.Alignment.Horizontal = "left"
	case integer:
		s.NumFmt = numFmtInteger
	case decimal:
		s.NumFmt = numFmtFloat
	case percent:
		s.NumFmt = numFmtPercent
	}
	if highlight {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highlightFill}}
		s.Font = &excelize.Font{Bold: true}
	}
	id, err := wr.f.NewStyle(s)
	if err != nil {
		return 0, err
	}
	wr.styles[key] = id
	return id, nil
}

func (wr *writer) writeTable(t table) error {
	f := wr.f
	headers := make([]any, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.header
	}
	if err := f.SetSheetRow(t.name, "A1", &headers); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(t.columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.name, "A1", lastCol+"1", wr.header); err != nil {
		return err
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return err
		}
	}

	lastRow := len(t.rows) + 1
	for c, col := range t.columns {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := float64(max(len(col.header), 10) + 2)
		if col.kind == text {
			width = 40
		}
		if err := f.SetColWidth(t.name, name, name, width); err != nil {
			return err
		}
		for r := 2; r <= lastRow; r++ {
			id, err := wr.style(col.kind, t.highlight != nil && t.highlight(r-2))
			if err != nil {
				return err
			}
			cell := fmt.Sprintf("%s%d", name, r)
			if err := f.SetCellStyle(t.name, cell, cell, id); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(t.name, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil)
}
