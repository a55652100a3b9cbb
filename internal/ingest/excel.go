package ingest

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"rcman/internal/domain"
)

// loadWorkbook reads every sheet of an xlsx/xlsm workbook into the uniform
// Sheet form. The first row of each sheet becomes its column labels; rows
// with no content at all are dropped, ragged rows are kept as-is.
func loadWorkbook(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			log.Printf("ingest.loadWorkbook: skipping sheet %q: %v", name, err)
			continue
		}

		sheet := Sheet{Name: name}
		for i, row := range rows {
			if i == 0 {
				for _, cell := range row {
					sheet.Columns = append(sheet.Columns, strings.TrimSpace(cell))
				}
				continue
			}
			if nonEmptyCount(row) == 0 {
				continue
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (p *Pipeline) analyzeExcel(fileName string, data []byte) (*Result, error) {
	sheets, err := loadWorkbook(data)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	for _, sheet := range sheets {
		all := sheetGrid(sheet)
		// A sheet needs a few rows before structure inference is worth
		// attempting.
		if len(all) < 3 {
			continue
		}

		if headerIdx, header, ok := locateHeader(all, p.headerScanRows); ok {
			roles := classifyColumns(header)
			cols := roleColumns(roles, len(header))
			extractRows(Sheet{Name: sheet.Name, Rows: all}, headerIdx, cols, acc)
		} else {
			scanDepartmentNames(all, acc)
		}
	}

	if len(acc.objectives) < p.minObjectives {
		log.Printf("ingest.Pipeline: only %d objectives from structured pass, running fallback", len(acc.objectives))
		gridded := make([]Sheet, 0, len(sheets))
		for _, sheet := range sheets {
			gridded = append(gridded, Sheet{Name: sheet.Name, Rows: sheetGrid(sheet)})
		}
		p.rescue(gridded, acc)
	}

	if len(acc.depts) == 0 {
		acc.depts = append(acc.depts, p.defaultDepartments...)
	}

	analysis := &domain.Analysis{
		FileName:    fileName,
		FileKind:    domain.FileKindExcel,
		SheetCount:  len(sheets),
		Objectives:  acc.objectives,
		Gaps:        acc.gaps,
		Departments: acc.depts,
	}
	tagRiskTypes(analysis)
	finalize(analysis)

	log.Printf("ingest.Pipeline: extracted %d objectives, %d gaps, %d departments from %s",
		analysis.TotalControls, analysis.ControlGaps, len(analysis.Departments), fileName)
	return &Result{Analysis: analysis, Sheets: sheets}, nil
}

// sheetGrid re-joins a sheet's column labels and data rows into one grid so
// header location can consider the label row too.
func sheetGrid(sheet Sheet) [][]string {
	grid := make([][]string, 0, len(sheet.Rows)+1)
	if len(sheet.Columns) > 0 {
		grid = append(grid, sheet.Columns)
	}
	grid = append(grid, sheet.Rows...)
	return grid
}
