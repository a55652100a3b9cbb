package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"rcman/internal/domain"
)

const (
	sheetSummary         = "Risk Summary"
	sheetObjectives      = "Control Objectives"
	sheetGaps            = "Gaps"
	sheetDepartmentRisks = "Department Risk Analysis"
	sheetRecommendations = "Recommendations"
)

var objectiveHeaders = []string{
	"Department",
	"Control Objective",
	"What Can Go Wrong",
	"Risk Level",
	"Control Activities",
	"Control/Design Gap",
	"Gap Details",
	"Proposed Solution",
}

var gapHeaders = []string{
	"Department",
	"Control Objective",
	"Gap Title",
	"Description",
	"Risk Impact",
	"Proposed Solution",
}

var departmentRiskHeaders = []string{
	"Department",
	"Financial Risk",
	"Operational Risk",
	"Compliance Risk",
	"Strategic Risk",
	"Technological Risk",
	"Overall Risk",
}

var recommendationHeaders = []string{
	"Department",
	"Recommendation",
	"Priority",
	"Expected Impact",
}

// workbookStyles holds the resolved style IDs used across sheets.
type workbookStyles struct {
	title  int
	header int
	high   int
	medium int
	low    int
}

// BuildWorkbook renders the analysis into a styled multi-sheet workbook.
func BuildWorkbook(a *domain.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, fmt.Errorf("export.BuildWorkbook: styles: %w", err)
	}

	f.SetSheetName(f.GetSheetName(0), sheetSummary)
	if err := writeSummarySheet(f, a, styles); err != nil {
		return nil, err
	}
	if err := writeObjectivesSheet(f, a, styles); err != nil {
		return nil, err
	}
	if err := writeGapsSheet(f, a, styles); err != nil {
		return nil, err
	}
	if err := writeDepartmentRiskSheet(f, a, styles); err != nil {
		return nil, err
	}
	if err := writeRecommendationsSheet(f, a, styles); err != nil {
		return nil, err
	}

	for _, sheet := range f.GetSheetList() {
		if err := f.SetColWidth(sheet, "A", "H", 20); err != nil {
			return nil, fmt.Errorf("export.BuildWorkbook: column widths: %w", err)
		}
	}
	return f, nil
}

// WriteWorkbook renders the analysis and writes the xlsx bytes to w.
func WriteWorkbook(a *domain.Analysis, w io.Writer) error {
	f, err := BuildWorkbook(a)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteWorkbook: %w", err)
	}
	return nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "0000FF"},
	})
	if err != nil {
		return s, err
	}

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return s, err
	}

	fills := []struct {
		color string
		dst   *int
	}{
		{"FF0000", &s.high},
		{"FFC000", &s.medium},
		{"92D050", &s.low},
	}
	for _, fill := range fills {
		*fill.dst, err = f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.color}},
			Border: border,
		})
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s workbookStyles) forLevel(level domain.RiskLevel) (int, bool) {
	switch level {
	case domain.RiskHigh:
		return s.high, true
	case domain.RiskMedium:
		return s.medium, true
	case domain.RiskLow:
		return s.low, true
	}
	return 0, false
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, styleID int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, a *domain.Analysis, styles workbookStyles) error {
	if err := f.SetCellValue(sheetSummary, "A1", "Risk Control Matrix Analysis Summary"); err != nil {
		return err
	}
	if err := f.MergeCell(sheetSummary, "A1", "H1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "A1", styles.title); err != nil {
		return err
	}

	f.SetCellValue(sheetSummary, "A3", "Departments")
	f.SetCellStyle(sheetSummary, "A3", "A3", styles.header)
	f.SetCellValue(sheetSummary, "B3", strings.Join(a.Departments, ", "))

	f.SetCellValue(sheetSummary, "A4", "Risk Distribution")
	f.SetCellStyle(sheetSummary, "A4", "A4", styles.header)

	rows := []struct {
		label string
		level domain.RiskLevel
		style int
	}{
		{"High Risk Items", domain.RiskHigh, styles.high},
		{"Medium Risk Items", domain.RiskMedium, styles.medium},
		{"Low Risk Items", domain.RiskLow, styles.low},
	}
	for i, r := range rows {
		row := 5 + i
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), r.label)
		cell := fmt.Sprintf("B%d", row)
		f.SetCellValue(sheetSummary, cell, a.RiskDistribution[r.level])
		f.SetCellStyle(sheetSummary, cell, cell, r.style)
	}

	f.SetCellValue(sheetSummary, "A9", "Overall Risk Score")
	f.SetCellStyle(sheetSummary, "A9", "A9", styles.header)
	f.SetCellValue(sheetSummary, "B9", a.RiskScore)
	return nil
}

func writeObjectivesSheet(f *excelize.File, a *domain.Analysis, styles workbookStyles) error {
	if _, err := f.NewSheet(sheetObjectives); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetObjectives, objectiveHeaders, styles.header); err != nil {
		return err
	}

	for i := range a.Objectives {
		obj := &a.Objectives[i]
		row := i + 2
		values := []any{
			obj.Department,
			obj.Objective,
			obj.WhatCanGoWrong,
			string(obj.RiskLevel),
			controlActivities(obj),
			formatBool(obj.IsGap),
			obj.GapDetails,
			proposedSolution(obj),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetObjectives, cell, &values); err != nil {
			return err
		}
		if style, ok := styles.forLevel(obj.RiskLevel); ok {
			levelCell := fmt.Sprintf("D%d", row)
			if err := f.SetCellStyle(sheetObjectives, levelCell, levelCell, style); err != nil {
				return err
			}
		}
	}

	if len(a.Objectives) == 0 {
		return nil
	}
	return addDropList(f, sheetObjectives,
		fmt.Sprintf("D2:D%d", len(a.Objectives)+1),
		[]string{"High", "Medium", "Low"})
}

func writeGapsSheet(f *excelize.File, a *domain.Analysis, styles workbookStyles) error {
	if _, err := f.NewSheet(sheetGaps); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetGaps, gapHeaders, styles.header); err != nil {
		return err
	}

	for i := range a.Gaps {
		gap := &a.Gaps[i]
		values := []any{
			gap.Department,
			gap.ControlObjective,
			gap.GapTitle,
			gap.Description,
			gap.RiskImpact,
			gap.ProposedSolution,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetGaps, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeDepartmentRiskSheet(f *excelize.File, a *domain.Analysis, styles workbookStyles) error {
	if _, err := f.NewSheet(sheetDepartmentRisks); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetDepartmentRisks, departmentRiskHeaders, styles.header); err != nil {
		return err
	}

	row := 2
	for _, dept := range a.Departments {
		profile, ok := a.DepartmentRisks[dept]
		if !ok {
			continue
		}
		if err := f.SetCellValue(sheetDepartmentRisks, fmt.Sprintf("A%d", row), dept); err != nil {
			return err
		}

		total := 0
		for col, category := range domain.RiskCategories {
			score := profile[category]
			total += score
			level := categoryLevel(score)
			cell, err := excelize.CoordinatesToCellName(col+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetDepartmentRisks, cell, string(level)); err != nil {
				return err
			}
			if style, ok := styles.forLevel(level); ok {
				if err := f.SetCellStyle(sheetDepartmentRisks, cell, cell, style); err != nil {
					return err
				}
			}
		}

		avg := float64(total) / float64(len(domain.RiskCategories))
		overall := overallLevel(avg)
		cell := fmt.Sprintf("G%d", row)
		if err := f.SetCellValue(sheetDepartmentRisks, cell, string(overall)); err != nil {
			return err
		}
		if style, ok := styles.forLevel(overall); ok {
			if err := f.SetCellStyle(sheetDepartmentRisks, cell, cell, style); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func writeRecommendationsSheet(f *excelize.File, a *domain.Analysis, styles workbookStyles) error {
	if _, err := f.NewSheet(sheetRecommendations); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetRecommendations, recommendationHeaders, styles.header); err != nil {
		return err
	}

	for i := range a.Recommendations {
		rec := &a.Recommendations[i]
		row := i + 2
		values := []any{rec.Department, rec.Description, rec.Priority, rec.Impact}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetRecommendations, cell, &values); err != nil {
			return err
		}
		if style, ok := styles.forLevel(domain.RiskLevel(rec.Priority)); ok {
			priorityCell := fmt.Sprintf("C%d", row)
			if err := f.SetCellStyle(sheetRecommendations, priorityCell, priorityCell, style); err != nil {
				return err
			}
		}
	}

	if len(a.Recommendations) == 0 {
		return nil
	}
	return addDropList(f, sheetRecommendations,
		fmt.Sprintf("C2:C%d", len(a.Recommendations)+1),
		[]string{"High", "Medium", "Low"})
}

func addDropList(f *excelize.File, sheet, sqref string, options []string) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = sqref
	if err := dv.SetDropList(options); err != nil {
		return err
	}
	return f.AddDataValidation(sheet, dv)
}

// categoryLevel maps a 0-4 category score to a display level.
func categoryLevel(score int) domain.RiskLevel {
	switch {
	case score >= 4:
		return domain.RiskHigh
	case score >= 2:
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// overallLevel maps the category average to a display level.
func overallLevel(avg float64) domain.RiskLevel {
	switch {
	case avg >= 3.5:
		return domain.RiskHigh
	case avg >= 2.0:
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// controlActivities returns the extracted control activities, or a generic
// description keyed off the risk text when the source document left the
// column blank.
func controlActivities(obj *domain.ControlObjective) string {
	if obj.ControlActivities != "" {
		return obj.ControlActivities
	}
	risk := strings.ToLower(obj.WhatCanGoWrong)
	switch {
	case strings.Contains(risk, "unauthorized access"):
		return "Implementation of role-based access controls with regular access reviews. Multi-factor authentication for critical systems. Automated logging and monitoring of all access attempts. Regular audit of user privileges to ensure principle of least privilege."
	case strings.Contains(risk, "database"):
		return "Regular database health monitoring with automated alerts. Scheduled database integrity checks and maintenance. Comprehensive backup procedures with regular recovery testing. Database access strictly controlled through application interfaces only."
	case strings.Contains(risk, "accounting entries"), strings.Contains(risk, "financial"):
		return "Multi-level approval workflow for all journal entries. Automated validation of accounting codes and amounts. Regular reconciliation of accounts. Monthly review of unusual transactions and threshold-based exception reporting."
	}
	return "Regular monitoring and review of processes. Clearly documented procedures with designated responsibilities. Automated controls where possible, with manual oversight. Periodic testing and validation of control effectiveness."
}

// proposedSolution returns the extracted proposed control, or a generic
// remediation keyed off the risk text when none was captured.
func proposedSolution(obj *domain.ControlObjective) string {
	if obj.ProposedControl != "" {
		return obj.ProposedControl
	}
	risk := strings.ToLower(obj.WhatCanGoWrong)
	switch {
	case strings.Contains(risk, "unauthorized access"):
		return "Implement a comprehensive Identity and Access Management (IAM) solution with regular certification reviews. Establish segregation of duties matrix and enforce through automated controls. Implement privileged access management with just-in-time access."
	case strings.Contains(risk, "database"):
		return "Implement database activity monitoring tools to track all changes. Establish formal change management procedures for schema and data modifications. Implement data loss prevention controls with automated alerting."
	case strings.Contains(risk, "accounting"), strings.Contains(risk, "financial"):
		return "Implement automated validation rules for accounting entries with threshold-based approval workflows. Establish regular account reconciliation practices with management sign-off. Implement continuous monitoring dashboards for financial data integrity."
	}
	return "Implement comprehensive documentation of control procedures with clear ownership. Establish regular control testing schedule with measurable effectiveness criteria. Enhance monitoring through automated dashboard reporting of control metrics."
}
