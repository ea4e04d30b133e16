package loaders

import (
	"bytes"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"MarginSight/api/mpa/model"
)

// workbook abstracts over .xlsx (excelize) and legacy .xls (extrame/xls)
// sources so loaders only ever see [][]string.
type workbook struct {
	xlsx *excelize.File
	xls  *xls.WorkBook
}

// openWorkbook tries excelize first and falls back to the legacy xls reader.
func openWorkbook(data []byte) (*workbook, error) {
	f, xlsxErr := excelize.OpenReader(bytes.NewReader(data))
	if xlsxErr == nil {
		return &workbook{xlsx: f}, nil
	}
	wb, xlsErr := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if xlsErr == nil {
		return &workbook{xls: wb}, nil
	}
	return nil, model.Inputf("failed to open workbook as xlsx (%v) or xls (%v)", xlsxErr, xlsErr)
}

func (w *workbook) Close() {
	if w.xlsx != nil {
		w.xlsx.Close()
	}
}

// Rows returns all cells of the named sheet. An empty name selects the first
// sheet. A missing sheet is a fatal input error.
func (w *workbook) Rows(sheetName string) ([][]string, error) {
	if w.xlsx != nil {
		name := sheetName
		if name == "" {
			name = w.xlsx.GetSheetName(0)
		}
		rows, err := w.xlsx.GetRows(name)
		if err != nil {
			return nil, model.Inputf("sheet %q not readable: %v", name, err)
		}
		return rows, nil
	}

	sheet := w.findXLSSheet(sheetName)
	if sheet == nil {
		return nil, model.Inputf("sheet %q not found in workbook", sheetName)
	}
	out := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			out = append(out, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (w *workbook) findXLSSheet(sheetName string) *xls.WorkSheet {
	if sheetName == "" {
		return w.xls.GetSheet(0)
	}
	for i := 0; i < w.xls.NumSheets(); i++ {
		if s := w.xls.GetSheet(i); s != nil && strings.EqualFold(s.Name, sheetName) {
			return s
		}
	}
	return nil
}
