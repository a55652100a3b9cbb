package export

import (
	"fmt"
	"strings"
	"time"

	"rcman/internal/domain"
)

// summaryRecommendationLimit caps how many recommendations the executive
// summary lists.
const summaryRecommendationLimit = 5

// ExecutiveSummary renders a plain-text leadership summary of the analysis.
func ExecutiveSummary(a *domain.Analysis, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RISK CONTROL MATRIX ANALYSIS - EXECUTIVE SUMMARY\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("January 2, 2006 at 3:04 PM"))

	b.WriteString("OVERVIEW\n========\n")
	fmt.Fprintf(&b, "Source Document: %s\n", a.FileName)
	fmt.Fprintf(&b, "Total Control Objectives: %d\n", len(a.Objectives))
	fmt.Fprintf(&b, "Departments Analyzed: %d\n", len(a.Departments))
	fmt.Fprintf(&b, "Control Gaps Identified: %d\n", len(a.Gaps))
	fmt.Fprintf(&b, "Overall Risk Score: %s\n", a.RiskScore)

	b.WriteString("\nRISK DISTRIBUTION\n================\n")
	for _, level := range []domain.RiskLevel{domain.RiskHigh, domain.RiskMedium, domain.RiskLow} {
		fmt.Fprintf(&b, "%s Risk: %d controls\n", level, a.RiskDistribution[level])
	}

	b.WriteString("\nDEPARTMENTS ANALYZED\n")
	b.WriteString(strings.Repeat("=", 20) + "\n")
	for _, dept := range a.Departments {
		fmt.Fprintf(&b, "- %s\n", dept)
	}

	b.WriteString("\nKEY RECOMMENDATIONS\n")
	b.WriteString(strings.Repeat("=", 19) + "\n")
	recs := a.Recommendations
	if len(recs) > summaryRecommendationLimit {
		recs = recs[:summaryRecommendationLimit]
	}
	for i, rec := range recs {
		title := rec.Title
		if title == "" {
			title = "Recommendation"
		}
		priority := rec.Priority
		if priority == "" {
			priority = "Medium"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   Priority: %s\n", priority)
		fmt.Fprintf(&b, "   %s\n\n", rec.Description)
	}

	b.WriteString("\nThis analysis was generated automatically.\nFor detailed analysis, please refer to the complete Excel report.\n")
	return b.String()
}
