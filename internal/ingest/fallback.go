package ingest

import (
	"log"
	"strings"

	"rcman/internal/domain"
)

// Content-based keyword lists for the fallback pass, which recovers records
// from sheets whose structure the header pass could not read.
var (
	fallbackDeptKeywords = []string{
		"employee master", "payroll", "leave management", "attendance",
	}
	fallbackObjectiveKeywords = []string{
		"details", "control", "review", "access", "monitoring",
	}
	fallbackRiskKeywords = []string{
		"incorrect", "unauthorized", "absence", "inadequate",
	}
)

// departmentNameKeywords identify cells that look like department or area
// names on sheets with no usable header.
var departmentNameKeywords = []string{
	"employee", "payroll", "personnel", "attendance", "leave", "management",
	"separation", "maintenance", "processing", "department", "hr", "finance",
}

// rescue re-scans every row of every sheet with loose content-based
// heuristics. It runs only when the structured pass yields too few records,
// and is strictly additive: nothing already extracted is removed.
func (p *Pipeline) rescue(sheets []Sheet, acc *accumulator) {
	before := len(acc.objectives)

	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			if nonEmptyCount(row) < 3 {
				continue
			}

			var areaVal, objVal, riskVal string
			for _, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				v := strings.ToLower(cell)
				switch {
				case containsAny(v, fallbackDeptKeywords):
					areaVal = cell
				case containsAny(v, fallbackObjectiveKeywords):
					objVal = cell
				case containsAny(v, fallbackRiskKeywords):
					riskVal = cell
				}
			}

			if areaVal == "" || (objVal == "" && riskVal == "") {
				continue
			}

			acc.addDepartment(areaVal)

			objective := objVal
			if objective == "" {
				objective = "Unknown"
			}
			acc.objectives = append(acc.objectives, domain.ControlObjective{
				Department:        areaVal,
				Objective:         objective,
				WhatCanGoWrong:    riskVal,
				RiskLevel:         domain.RiskMedium,
				ControlActivities: objVal,
				IsGap:             riskVal != "",
				GapDetails:        riskVal,
			})
		}
	}

	log.Printf("ingest.Pipeline: fallback pass recovered %d additional objectives",
		len(acc.objectives)-before)
}

// scanDepartmentNames harvests department-looking cell values from a sheet
// that produced no header candidate. Short tokens and long phrases are
// rejected to avoid swallowing sentences.
func scanDepartmentNames(rows [][]string, acc *accumulator) {
	for _, row := range rows {
		if nonEmptyCount(row) < 3 {
			continue
		}
		for _, cell := range row {
			candidate := strings.TrimSpace(cell)
			if candidate == "" {
				continue
			}
			if !containsAny(strings.ToLower(candidate), departmentNameKeywords) {
				continue
			}
			if len(candidate) > 3 && len(strings.Fields(candidate)) <= 5 {
				acc.addDepartment(candidate)
			}
		}
	}
}
