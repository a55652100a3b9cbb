package ingest

import (
	"fmt"
	"strings"

	"rcman/internal/domain"
)

// BuildRiskDistribution counts objectives per normalized risk level. All
// three levels are always present in the result, defaulting to 0. Externally
// supplied variants ("h", "critical", "mod") are tolerated.
func BuildRiskDistribution(objs []domain.ControlObjective) domain.RiskDistribution {
	dist := domain.RiskDistribution{
		domain.RiskHigh:   0,
		domain.RiskMedium: 0,
		domain.RiskLow:    0,
	}
	for _, obj := range objs {
		level := strings.TrimSpace(string(obj.RiskLevel))
		if level == "" {
			continue
		}
		dist[domain.NormalizeRiskLevel(level)]++
	}
	return dist
}

// categoryRules score objectives against the fixed risk categories by
// keyword containment over the concatenated objective and risk text.
var categoryRules = []struct {
	category domain.RiskCategory
	keywords []string
}{
	{domain.CategoryFinancial, []string{
		"financ", "account", "budget", "cost", "expense", "revenue", "payment", "tax", "audit",
	}},
	{domain.CategoryOperational, []string{
		"operat", "process", "procedur", "workflow", "efficien", "product", "service", "delivery",
	}},
	{domain.CategoryCompliance, []string{
		"comply", "compliance", "regulat", "legal", "law", "policy", "requirement", "standard",
	}},
	{domain.CategoryStrategic, []string{
		"strateg", "goal", "objective", "mission", "vision", "plan", "market", "competi",
	}},
	{domain.CategoryTechnological, []string{
		"tech", "system", "data", "secur", "access", "software", "hardware", "it ", "cyber",
	}},
}

// BuildDepartmentRisks scores every known department across the fixed risk
// categories: per category, the maximum risk-level weight over all matching
// objectives of that department. Categories are floored to 1 so a department
// is never reported as risk-free once it exists. An empty department list
// yields an empty map.
func BuildDepartmentRisks(objs []domain.ControlObjective, departments []string) map[string]domain.RiskProfile {
	profiles := make(map[string]domain.RiskProfile, len(departments))
	if len(departments) == 0 {
		return profiles
	}

	known := make(map[string]bool, len(departments))
	for _, dept := range departments {
		known[dept] = true
		profile := make(domain.RiskProfile, len(domain.RiskCategories))
		for _, cat := range domain.RiskCategories {
			profile[cat] = 0
		}
		profiles[dept] = profile
	}

	for _, obj := range objs {
		if obj.Department == "" || !known[obj.Department] {
			continue
		}
		weight := obj.RiskLevel.Weight()
		combined := strings.ToLower(obj.Objective + " " + obj.WhatCanGoWrong)

		profile := profiles[obj.Department]
		for _, rule := range categoryRules {
			if containsAny(combined, rule.keywords) && weight > profile[rule.category] {
				profile[rule.category] = weight
			}
		}
	}

	for _, dept := range departments {
		for _, cat := range domain.RiskCategories {
			if profiles[dept][cat] == 0 {
				profiles[dept][cat] = 1
			}
		}
	}

	return profiles
}

// ComputeRiskScore reduces a risk distribution to a 0-10 score string:
// weighted average (High=3, Medium=2, Low=1) rescaled, one decimal. An empty
// distribution scores "N/A".
func ComputeRiskScore(dist domain.RiskDistribution) string {
	high := dist[domain.RiskHigh]
	medium := dist[domain.RiskMedium]
	low := dist[domain.RiskLow]

	total := high + medium + low
	if total == 0 {
		return "N/A"
	}

	weighted := float64(high*3+medium*2+low) / float64(total)
	normalized := weighted / 3 * 10
	if normalized > 10 {
		normalized = 10
	}
	if normalized < 0 {
		normalized = 0
	}
	return fmt.Sprintf("%.1f", normalized)
}
