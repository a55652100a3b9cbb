// Package enrich deepens extracted analyses through an LLM provider:
// department-level risk assessments, control-gap findings, and remediation
// recommendations for tabular documents, and full structure recovery for
// raw-text documents. Every failure mode degrades to a deterministic local
// assessment so the caller always receives a usable analysis.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"rcman/internal/domain"
	"rcman/internal/ingest"
	"rcman/internal/port"
)

// Service coordinates prompt construction, provider calls, and merging the
// model's output back into an analysis.
type Service struct {
	enricher port.Enricher
	maxChars int
}

// NewService creates an enrichment Service. maxChars caps raw-text prompt
// size; zero means the default.
func NewService(enricher port.Enricher, maxChars int) *Service {
	return &Service{enricher: enricher, maxChars: maxChars}
}

// EnrichAnalysis runs the enrichment pass appropriate for the document kind
// and merges the result into res.Analysis in place. A provider transport
// failure is returned after the local fallback has been applied, so the
// analysis is usable either way.
func (s *Service) EnrichAnalysis(ctx context.Context, res *ingest.Result) error {
	if res.Analysis.RequiresEnrichment {
		return s.enrichRawText(ctx, res.Analysis)
	}
	return s.enrichTabular(ctx, res)
}

// tableResult mirrors the JSON contract of the table-analysis prompt.
type tableResult struct {
	Departments []struct {
		Name             string              `json:"name"`
		OverallRiskLevel string              `json:"overall_risk_level"`
		KeyRisks         []string            `json:"key_risks"`
		RiskAnalysis     map[string][]string `json:"risk_analysis"`
		ControlGaps      []struct {
			GapTitle       string `json:"gap_title"`
			Impact         string `json:"impact"`
			Recommendation string `json:"recommendation"`
		} `json:"control_gaps"`
		Summary string `json:"summary"`
	} `json:"departments"`
	OverallRecommendations []struct {
		Title       string `json:"title"`
		Priority    string `json:"priority"`
		Description string `json:"description"`
		Impact      string `json:"impact"`
	} `json:"overall_recommendations"`
}

func (s *Service) enrichTabular(ctx context.Context, res *ingest.Result) error {
	a := res.Analysis
	prompt := BuildTableAnalysisPrompt(a.Departments, res.Sheets)

	out, err := s.enricher.Complete(ctx, prompt)
	if err != nil {
		applyLocalFallback(a)
		return fmt.Errorf("enrichment call failed: %w", err)
	}

	var result tableResult
	if err := json.Unmarshal([]byte(ExtractJSON(out)), &result); err != nil {
		log.Printf("enrich.Service: unparseable table analysis response, using local fallback: %v", err)
		applyLocalFallback(a)
		return nil
	}

	a.DepartmentAnalyses = make(map[string]domain.DepartmentAnalysis, len(result.Departments))
	for _, dept := range result.Departments {
		name := dept.Name
		if name == "" {
			name = "Unknown"
		}

		categories := domain.RiskProfile{
			domain.CategoryFinancial:     enrichedCategoryScore(dept.RiskAnalysis["Financial"]),
			domain.CategoryOperational:   enrichedCategoryScore(dept.RiskAnalysis["Operational"]),
			domain.CategoryCompliance:    3,
			domain.CategoryStrategic:     3,
			domain.CategoryTechnological: 3,
		}

		a.DepartmentAnalyses[name] = domain.DepartmentAnalysis{
			OverallRiskLevel: domain.NormalizeRiskLevel(dept.OverallRiskLevel),
			KeyRisks:         dept.KeyRisks,
			RiskTypes:        dept.RiskAnalysis,
			Summary:          dept.Summary,
			RiskCategories:   categories,
		}
		if a.DepartmentRisks == nil {
			a.DepartmentRisks = make(map[string]domain.RiskProfile)
		}
		a.DepartmentRisks[name] = categories

		for _, gap := range dept.ControlGaps {
			a.Gaps = append(a.Gaps, domain.Gap{
				Department:       name,
				GapTitle:         gap.GapTitle,
				Description:      gap.GapTitle,
				RiskImpact:       gap.Impact,
				ProposedSolution: gap.Recommendation,
			})
		}
	}

	// Departments the model skipped still get an entry.
	for _, dept := range a.Departments {
		if _, ok := a.DepartmentAnalyses[dept]; ok {
			continue
		}
		log.Printf("enrich.Service: department %q missing from analysis, adding default", dept)
		a.DepartmentAnalyses[dept] = defaultDepartmentAnalysis(dept)
	}

	for _, rec := range result.OverallRecommendations {
		priority := rec.Priority
		if priority == "" {
			priority = string(domain.RiskMedium)
		}
		a.Recommendations = append(a.Recommendations, domain.Recommendation{
			Title:       rec.Title,
			Priority:    priority,
			Description: rec.Description,
			Impact:      rec.Impact,
		})
	}

	a.ControlGaps = len(a.Gaps)
	a.Enriched = true
	a.EnrichmentModel = s.enricher.Model()
	return nil
}

// rawDocResult mirrors the JSON contract of the raw-text prompt.
type rawDocResult struct {
	Departments       []string                  `json:"departments"`
	ControlObjectives []domain.ControlObjective `json:"control_objectives"`
	Gaps              []domain.Gap              `json:"gaps"`
	DepartmentRisks   map[string]struct {
		OverallRiskLevel string         `json:"overall_risk_level"`
		RiskCategories   map[string]int `json:"risk_categories"`
		KeyRisks         []string       `json:"key_risks"`
		Summary          string         `json:"summary"`
	} `json:"department_risks"`
}

func (s *Service) enrichRawText(ctx context.Context, a *domain.Analysis) error {
	prompt := BuildRawTextPrompt(a.ExtractedText, s.maxChars)

	out, err := s.enricher.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("enrichment call failed: %w", err)
	}

	var result rawDocResult
	if err := json.Unmarshal([]byte(ExtractJSON(out)), &result); err != nil {
		return fmt.Errorf("parsing raw document analysis: %w", err)
	}

	if len(result.Departments) > 0 {
		a.Departments = result.Departments
	}
	a.Objectives = result.ControlObjectives
	a.Gaps = result.Gaps
	a.TotalControls = len(a.Objectives)
	a.ControlGaps = len(a.Gaps)
	a.RiskDistribution = ingest.BuildRiskDistribution(a.Objectives)
	a.RiskScore = ingest.ComputeRiskScore(a.RiskDistribution)

	a.DepartmentRisks = make(map[string]domain.RiskProfile, len(result.DepartmentRisks))
	a.DepartmentAnalyses = make(map[string]domain.DepartmentAnalysis, len(result.DepartmentRisks))
	for dept, risks := range result.DepartmentRisks {
		profile := make(domain.RiskProfile, len(risks.RiskCategories))
		for cat, score := range risks.RiskCategories {
			profile[domain.RiskCategory(cat)] = score
		}
		a.DepartmentRisks[dept] = profile
		a.DepartmentAnalyses[dept] = domain.DepartmentAnalysis{
			OverallRiskLevel: domain.NormalizeRiskLevel(risks.OverallRiskLevel),
			KeyRisks:         risks.KeyRisks,
			Summary:          risks.Summary,
			RiskCategories:   profile,
		}
	}
	if len(a.DepartmentRisks) == 0 {
		a.DepartmentRisks = ingest.BuildDepartmentRisks(a.Objectives, a.Departments)
	}

	a.Recommendations = localRecommendations(a)
	a.RequiresEnrichment = false
	a.Enriched = true
	a.EnrichmentModel = s.enricher.Model()
	return nil
}

// enrichedCategoryScore maps presence of model-identified risks in a
// category to its numeric profile score.
func enrichedCategoryScore(risks []string) int {
	if len(risks) > 0 {
		return 4
	}
	return 2
}

// overallLevelFromProfile reduces a category profile to an overall level by
// its average score.
func overallLevelFromProfile(profile domain.RiskProfile) domain.RiskLevel {
	if len(profile) == 0 {
		return domain.RiskMedium
	}
	sum := 0
	for _, v := range profile {
		sum += v
	}
	avg := float64(sum) / float64(len(profile))
	switch {
	case avg >= 3.5:
		return domain.RiskHigh
	case avg >= 2.5:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// localDepartmentAnalysis is the deterministic stand-in used when the model
// output for a department is unavailable.
func localDepartmentAnalysis(dept string, profile domain.RiskProfile) domain.DepartmentAnalysis {
	level := overallLevelFromProfile(profile)
	return domain.DepartmentAnalysis{
		OverallRiskLevel: level,
		KeyRisks: []string{
			fmt.Sprintf("%s lacks adequate controls", dept),
			fmt.Sprintf("%s processes may have gaps", dept),
			fmt.Sprintf("%s risk assessment requires attention", dept),
		},
		RiskTypes: map[string][]string{
			"Operational":       {fmt.Sprintf("%s operational processes need review", dept)},
			"Financial":         {fmt.Sprintf("%s financial controls should be evaluated", dept)},
			"Fraud":             {fmt.Sprintf("%s fraud prevention needs assessment", dept)},
			"Financial Fraud":   {fmt.Sprintf("%s financial reporting controls need review", dept)},
			"Operational Fraud": {fmt.Sprintf("%s operational override controls need assessment", dept)},
		},
		Summary: fmt.Sprintf("The %s department shows a %s overall risk level based on analysis of control objectives and risk categories.",
			dept, strings.ToLower(string(level))),
		RiskCategories: profile,
	}
}

// defaultDepartmentAnalysis is the entry substituted for departments the
// model's response skipped entirely.
func defaultDepartmentAnalysis(dept string) domain.DepartmentAnalysis {
	return domain.DepartmentAnalysis{
		OverallRiskLevel: domain.RiskMedium,
		KeyRisks:         []string{fmt.Sprintf("Need to analyze %s department risks", dept)},
		RiskTypes: map[string][]string{
			"Operational":       {fmt.Sprintf("Potential operational risks in %s", dept)},
			"Financial":         {},
			"Fraud":             {},
			"Financial Fraud":   {},
			"Operational Fraud": {},
		},
		Summary: fmt.Sprintf("Additional analysis required for %s department", dept),
		RiskCategories: domain.RiskProfile{
			domain.CategoryFinancial:     2,
			domain.CategoryOperational:   3,
			domain.CategoryCompliance:    2,
			domain.CategoryStrategic:     2,
			domain.CategoryTechnological: 2,
		},
	}
}

// localRecommendations builds per-department remediation suggestions without
// a model call.
func localRecommendations(a *domain.Analysis) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(a.Departments))
	for _, dept := range a.Departments {
		level := domain.RiskMedium
		if analysis, ok := a.DepartmentAnalyses[dept]; ok {
			level = analysis.OverallRiskLevel
		} else if profile, ok := a.DepartmentRisks[dept]; ok {
			level = overallLevelFromProfile(profile)
		}
		recs = append(recs, domain.Recommendation{
			Department: dept,
			Title:      fmt.Sprintf("Review Control Framework for %s", dept),
			Description: fmt.Sprintf("Conduct a comprehensive review of the control framework in the %s department, focusing on high-risk areas. "+
				"Implement additional preventive controls to address potential gaps and automate manual processes where possible to reduce human error.", dept),
			Impact:   "Strengthened control environment and reduced risk exposure",
			Priority: string(level),
		})
	}
	return recs
}

// applyLocalFallback fills department analyses and recommendations from the
// heuristic aggregates alone.
func applyLocalFallback(a *domain.Analysis) {
	if a.DepartmentAnalyses == nil {
		a.DepartmentAnalyses = make(map[string]domain.DepartmentAnalysis, len(a.Departments))
	}
	for _, dept := range a.Departments {
		if _, ok := a.DepartmentAnalyses[dept]; ok {
			continue
		}
		a.DepartmentAnalyses[dept] = localDepartmentAnalysis(dept, a.DepartmentRisks[dept])
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = localRecommendations(a)
	}
}
