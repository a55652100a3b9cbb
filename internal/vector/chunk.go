// Package vector maintains a similarity-searchable index of analysis
// content. Indexing is strictly best-effort: a failure never blocks the
// analysis itself.
package vector

import (
	"fmt"
	"strings"

	"rcman/internal/domain"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// SplitText splits text into overlapping chunks of approximately chunkSize
// characters, preferring to break at a newline or period past the midpoint
// of a chunk. Zero arguments select the defaults.
func SplitText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	// An overlap reaching the chunk midpoint can move the window backwards
	// when a break lands just past the midpoint, so clamp to the default
	// size/overlap ratio.
	if overlap < 0 || overlap >= chunkSize/2 {
		overlap = chunkSize / 10
	}

	var chunks []string
	start := 0
	length := len(text)

	for start < length {
		end := start + chunkSize
		if end > length {
			end = length
		}

		if end < length {
			lastNewline := strings.LastIndex(text[start:end], "\n")
			lastPeriod := strings.LastIndex(text[start:end], ".")
			mid := chunkSize / 2
			if lastNewline > mid {
				end = start + lastNewline + 1
			} else if lastPeriod > mid {
				end = start + lastPeriod + 1
			}
		}

		chunks = append(chunks, text[start:end])

		if end < length {
			start = end - overlap
		} else {
			start = length
		}
	}
	return chunks
}

// objectiveChunkText renders a control objective into the text form that
// gets embedded and searched.
func objectiveChunkText(obj domain.ControlObjective) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Department: %s\n", obj.Department)
	fmt.Fprintf(&b, "Control Objective: %s\n", obj.Objective)
	fmt.Fprintf(&b, "What Can Go Wrong: %s\n", obj.WhatCanGoWrong)
	fmt.Fprintf(&b, "Risk Level: %s\n", obj.RiskLevel)
	fmt.Fprintf(&b, "Control Activities: %s\n", obj.ControlActivities)
	if obj.IsGap {
		fmt.Fprintf(&b, "Gap Details: %s\n", obj.GapDetails)
		fmt.Fprintf(&b, "Proposed Control: %s\n", obj.ProposedControl)
	}
	return b.String()
}

// gapChunkText renders a gap into its embeddable text form.
func gapChunkText(gap domain.Gap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Department: %s\n", gap.Department)
	fmt.Fprintf(&b, "Control Objective: %s\n", gap.ControlObjective)
	fmt.Fprintf(&b, "Gap Title: %s\n", gap.GapTitle)
	fmt.Fprintf(&b, "Description: %s\n", gap.Description)
	fmt.Fprintf(&b, "Risk Impact: %s\n", gap.RiskImpact)
	fmt.Fprintf(&b, "Proposed Solution: %s\n", gap.ProposedSolution)
	return b.String()
}

// BuildChunks assembles the unembedded chunk set for an analysis: one chunk
// per objective, one per gap, and sliding-window text chunks for raw-text
// documents.
func BuildChunks(a *domain.Analysis, chunkSize, overlap int) []domain.Chunk {
	var chunks []domain.Chunk

	if a.ExtractedText != "" {
		for _, piece := range SplitText(a.ExtractedText, chunkSize, overlap) {
			chunks = append(chunks, domain.Chunk{
				AnalysisID: a.ID,
				Kind:       "text",
				Content:    piece,
			})
		}
	}

	for _, obj := range a.Objectives {
		chunks = append(chunks, domain.Chunk{
			AnalysisID: a.ID,
			Kind:       "control_objective",
			Department: obj.Department,
			RiskLevel:  string(obj.RiskLevel),
			Content:    objectiveChunkText(obj),
		})
	}

	for _, gap := range a.Gaps {
		chunks = append(chunks, domain.Chunk{
			AnalysisID: a.ID,
			Kind:       "gap",
			Department: gap.Department,
			Content:    gapChunkText(gap),
		})
	}

	return chunks
}
