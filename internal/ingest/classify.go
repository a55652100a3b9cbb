package ingest

import (
	"strings"

	"rcman/internal/domain"
)

// gapKeywords flag a risk description as indicating a control gap.
var gapKeywords = []string{
	"inadequate", "missing", "lack", "absence", "not adequate", "incorrect",
	"error", "without", "unauthorized", "risk", "fail", "fraud", "inappropriate",
}

// riskLevelRules map risk-description keywords to severity, evaluated
// first-match-wins. No rule matching defaults to Medium.
var riskLevelRules = []struct {
	level    domain.RiskLevel
	keywords []string
}{
	{domain.RiskHigh, []string{
		"critical", "high", "severe", "significant", "major", "fraud",
		"unauthorized", "incorrect",
	}},
	{domain.RiskLow, []string{
		"minor", "low", "minimal", "small", "unlikely",
	}},
}

// ClassifyRisk infers a risk level and gap flag from a free-text risk
// description. It is a pure function of the text and the fixed keyword
// tables: identical input always produces identical output.
func ClassifyRisk(text string) (domain.RiskLevel, bool) {
	t := strings.ToLower(text)

	isGap := containsAny(t, gapKeywords)

	for _, rule := range riskLevelRules {
		if containsAny(t, rule.keywords) {
			return rule.level, isGap
		}
	}
	return domain.RiskMedium, isGap
}
