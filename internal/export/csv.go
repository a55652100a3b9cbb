// Package export renders finalized analyses as downloadable artifacts:
// a CSV of control objectives, a styled multi-sheet XLSX workbook, and a
// plain-text executive summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"rcman/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// csvColumns defines the CSV header row (8 columns).
var csvColumns = []string{
	"Department",
	"Control Objective",
	"What Can Go Wrong",
	"Risk Level",
	"Control Activities",
	"Is Gap",
	"Gap Details",
	"Proposed Control",
}

// CSVWriter wraps csv.Writer for exporting control objectives as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes CSV to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 8-column header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(csvColumns)
}

// WriteObjectives converts a batch of control objectives to CSV rows and
// writes them.
func (w *CSVWriter) WriteObjectives(objectives []domain.ControlObjective) error {
	for i := range objectives {
		row := objectiveToRow(&objectives[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// objectiveToRow converts a single control objective to an 8-element string
// slice.
func objectiveToRow(obj *domain.ControlObjective) []string {
	row := make([]string, len(csvColumns))
	row[0] = obj.Department
	row[1] = obj.Objective
	row[2] = obj.WhatCanGoWrong
	row[3] = string(obj.RiskLevel)
	row[4] = obj.ControlActivities
	row[5] = formatBool(obj.IsGap)
	row[6] = obj.GapDetails
	row[7] = obj.ProposedControl
	return row
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_document_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(documentName, ext string) string {
	base := documentName
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = "analysis"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
