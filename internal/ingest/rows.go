package ingest

import (
	"strings"

	"rcman/internal/domain"
)

// gapTitleMax is the truncation length for derived gap titles.
const gapTitleMax = 50

// extractRows walks the data rows below a committed header and pulls values
// by column role. Rows shorter than the highest assigned column, and rows
// where department, objective, and risk are all empty, are skipped.
func extractRows(sheet Sheet, headerIdx int, cols map[columnRole]int, acc *accumulator) {
	maxCol := -1
	for _, c := range cols {
		if c > maxCol {
			maxCol = c
		}
	}

	for _, row := range sheet.Rows[headerIdx+1:] {
		if len(row) < maxCol+1 {
			continue
		}

		area := cellAt(row, cols, roleDepartment)
		objective := cellAt(row, cols, roleObjective)
		risk := cellAt(row, cols, roleRisk)
		subprocess := cellAt(row, cols, roleSubprocess)

		if area == "" && objective == "" && risk == "" {
			continue
		}

		if dept := strings.TrimSpace(area); dept != "" {
			acc.addDepartment(dept)
		}

		if objective == "" && risk == "" {
			continue
		}

		dept := strings.TrimSpace(area)
		if dept == "" {
			dept = "Unknown"
		}

		level, isGap := ClassifyRisk(risk)

		obj := domain.ControlObjective{
			Department:        dept,
			Objective:         objective,
			WhatCanGoWrong:    risk,
			RiskLevel:         level,
			ControlActivities: objective,
			IsGap:             isGap,
			AreaSubprocess:    subprocess,
		}
		if isGap {
			obj.GapDetails = risk
		}
		acc.objectives = append(acc.objectives, obj)

		if isGap {
			acc.gaps = append(acc.gaps, domain.Gap{
				Department:       dept,
				ControlObjective: objective,
				GapTitle:         truncateTitle(risk, gapTitleMax),
				Description:      risk,
				RiskImpact:       risk,
				AreaSubprocess:   subprocess,
			})
		}
	}
}

// cellAt returns the value at the column assigned to role, or "" when the
// role is unassigned or the row is too short.
func cellAt(row []string, cols map[columnRole]int, role columnRole) string {
	c, ok := cols[role]
	if !ok || c >= len(row) {
		return ""
	}
	return row[c]
}
