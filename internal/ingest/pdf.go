package ingest

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"rcman/internal/domain"
)

// placeholderDepartments seed the report views for raw-text documents until
// enrichment recovers the real structure.
var placeholderDepartments = []string{"Finance", "IT", "Operations", "HR"}

func (p *Pipeline) analyzePDF(fileName string, data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}

	var text strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("ingest.Pipeline: pdf page %d unreadable: %v", pageNum, err)
			continue
		}
		text.WriteString(content)
		text.WriteString("\n\n")
	}

	analysis := rawTextAnalysis(fileName, domain.FileKindPDF, text.String())
	log.Printf("ingest.Pipeline: extracted %d chars of text from %s", len(analysis.ExtractedText), fileName)
	return &Result{Analysis: analysis}, nil
}

// rawTextAnalysis builds the placeholder analysis for documents whose
// structure only enrichment can recover. Department profiles stay zeroed
// until then.
func rawTextAnalysis(fileName string, kind domain.FileKind, text string) *domain.Analysis {
	profiles := make(map[string]domain.RiskProfile, len(placeholderDepartments))
	for _, dept := range placeholderDepartments {
		profile := make(domain.RiskProfile, len(domain.RiskCategories))
		for _, cat := range domain.RiskCategories {
			profile[cat] = 0
		}
		profiles[dept] = profile
	}

	return &domain.Analysis{
		FileName:           fileName,
		FileKind:           kind,
		Departments:        append([]string(nil), placeholderDepartments...),
		RequiresEnrichment: true,
		ExtractedText:      text,
		RiskDistribution:   BuildRiskDistribution(nil),
		DepartmentRisks:    profiles,
		RiskScore:          "N/A",
	}
}
