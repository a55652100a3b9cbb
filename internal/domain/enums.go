package domain

import "strings"

// FileKind represents the supported document formats.
type FileKind string

const (
	FileKindExcel FileKind = "excel"
	FileKindCSV   FileKind = "csv"
	FileKindPDF   FileKind = "pdf"
	FileKindDOCX  FileKind = "docx"
)

// AllowedExtensions maps file extensions (without dot) to FileKind.
var AllowedExtensions = map[string]FileKind{
	"xlsx": FileKindExcel,
	"xlsm": FileKindExcel,
	"csv":  FileKindCSV,
	"pdf":  FileKindPDF,
	"docx": FileKindDOCX,
}

// ContentTypes maps FileKind to its MIME content type.
var ContentTypes = map[FileKind]string{
	FileKindExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileKindCSV:   "text/csv",
	FileKindPDF:   "application/pdf",
	FileKindDOCX:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// RiskLevel is the coarse severity classification of a risk.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// NormalizeRiskLevel maps free-text risk level variants to a canonical
// RiskLevel. Unknown values normalize to Medium.
func NormalizeRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h", "critical", "severe":
		return RiskHigh
	case "medium", "m", "mod", "moderate":
		return RiskMedium
	case "low", "l", "minor":
		return RiskLow
	default:
		return RiskMedium
	}
}

// Weight returns the numeric weight used in department risk profiles.
// Unrecognized or empty values weigh 2, not the Medium weight.
func (r RiskLevel) Weight() int {
	switch strings.ToLower(strings.TrimSpace(string(r))) {
	case "high", "h", "critical", "severe":
		return 4
	case "medium", "m", "mod", "moderate":
		return 3
	default:
		return 2
	}
}

// RiskCategory is one of the fixed department risk profile dimensions.
type RiskCategory string

const (
	CategoryFinancial     RiskCategory = "Financial"
	CategoryOperational   RiskCategory = "Operational"
	CategoryCompliance    RiskCategory = "Compliance"
	CategoryStrategic     RiskCategory = "Strategic"
	CategoryTechnological RiskCategory = "Technological"
)

// RiskCategories lists all profile categories in display order.
var RiskCategories = []RiskCategory{
	CategoryFinancial,
	CategoryOperational,
	CategoryCompliance,
	CategoryStrategic,
	CategoryTechnological,
}
