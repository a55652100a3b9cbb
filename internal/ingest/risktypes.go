package ingest

import (
	"strings"

	"rcman/internal/domain"
)

// riskTypeRules tag objectives with the specific risk families tracked by the
// reporting layer. A single objective can carry several tags.
var riskTypeRules = []struct {
	riskType string
	keywords []string
}{
	{"Operational", []string{
		"process", "workflow", "efficiency", "performance", "delivery", "resource",
		"procedure", "operational", "operation",
	}},
	{"Financial", []string{
		"financial", "budget", "cost", "expense", "revenue", "payment",
		"accounting", "payroll", "salary",
	}},
	{"Fraud", []string{
		"fraud", "misappropriation", "theft", "falsification", "bribery",
		"corruption", "unauthorized",
	}},
	{"Financial Fraud", []string{
		"financial fraud", "embezzlement", "accounting fraud", "false reporting",
		"misstatement", "incorrect amount",
	}},
	{"Operational Fraud", []string{
		"operational fraud", "process manipulation", "override", "unauthorized",
		"fictitious", "absence of control",
	}},
}

// tagRiskTypes assigns risk-family tags to every objective in place and
// tallies them on the analysis.
func tagRiskTypes(a *domain.Analysis) {
	counts := make(map[string]int)
	for i := range a.Objectives {
		obj := &a.Objectives[i]
		combined := strings.ToLower(obj.Objective + " " + obj.WhatCanGoWrong)
		for _, rule := range riskTypeRules {
			if containsAny(combined, rule.keywords) {
				obj.RiskTypes = append(obj.RiskTypes, rule.riskType)
				counts[rule.riskType]++
			}
		}
	}
	if len(counts) > 0 {
		a.RiskTypeCounts = counts
	}
}
