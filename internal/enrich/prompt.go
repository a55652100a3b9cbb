package enrich

import (
	"fmt"
	"strings"

	"rcman/internal/ingest"
)

// defaultMaxPromptChars caps how much extracted document text is inlined
// into a raw-text prompt.
const defaultMaxPromptChars = 30000

// formatSheets renders extracted sheets into a text table representation the
// model can read alongside the instructions.
func formatSheets(sheets []ingest.Sheet) string {
	var b strings.Builder
	for _, sheet := range sheets {
		fmt.Fprintf(&b, "\n=== SHEET: %s ===\n\n", sheet.Name)

		if len(sheet.Columns) > 0 {
			b.WriteString("| " + strings.Join(sheet.Columns, " | ") + " |\n")
			dashes := make([]string, len(sheet.Columns))
			for i, col := range sheet.Columns {
				dashes[i] = strings.Repeat("-", len(col))
			}
			b.WriteString("| " + strings.Join(dashes, " | ") + " |\n")
		}
		for _, row := range sheet.Rows {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// BuildTableAnalysisPrompt renders the department-focused analysis prompt
// for documents whose tabular structure extraction already recovered.
func BuildTableAnalysisPrompt(departments []string, sheets []ingest.Sheet) string {
	departmentsStr := strings.Join(departments, ", ")
	if departmentsStr == "" {
		departmentsStr = "All departments identified in the Area column"
	}

	return fmt.Sprintf(`You are a Risk Control Matrix (RCM) analysis expert. I will provide you with data from an uploaded RCM file.

Your task is to analyze all departments in the file, especially focusing on these specific departments:
%s

For each department, you must:
1. Analyze the control objectives and risks
2. Classify risks into these categories: Operational, Financial, Fraud, Financial Fraud, Operational Fraud
3. Identify control gaps
4. Provide recommendations

In the RCM file, departments are shown in the "Area" column.

Here is the raw data from the RCM document:

%s

Analyze ALL departments found in the data. For each department, provide a comprehensive analysis in this JSON format:

{
    "departments": [
        {
            "name": "Department Name",
            "overall_risk_level": "High/Medium/Low",
            "key_risks": ["Risk 1", "Risk 2"],
            "risk_analysis": {
                "Operational": ["Specific operational risks"],
                "Financial": ["Specific financial risks"],
                "Fraud": ["Specific fraud risks"],
                "Financial Fraud": ["Specific financial fraud risks"],
                "Operational Fraud": ["Specific operational fraud risks"]
            },
            "control_gaps": [
                {
                    "gap_title": "Gap description",
                    "impact": "Impact description",
                    "recommendation": "Recommendation to address gap"
                }
            ],
            "summary": "Brief summary of department's risk profile"
        }
    ],
    "overall_recommendations": [
        {
            "title": "Recommendation title",
            "priority": "High/Medium/Low",
            "description": "Detailed recommendation",
            "impact": "Expected impact of implementation"
        }
    ]
}

IMPORTANT: You MUST analyze ALL departments found in the RCM data. Do not focus on only one department.

Be comprehensive, but focus on practical, actionable insights. Identify specific risks rather than general statements.`,
		departmentsStr, formatSheets(sheets))
}

// BuildRawTextPrompt renders the structured-extraction prompt for raw-text
// documents (PDF/DOCX). Text beyond maxChars is truncated; zero means the
// default cap.
func BuildRawTextPrompt(extractedText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultMaxPromptChars
	}
	if len(extractedText) > maxChars {
		extractedText = extractedText[:maxChars] + "..."
	}

	return fmt.Sprintf(`You are a Risk Assessment and Control expert. I will provide you with text from a Risk Control Matrix (RCM) document.

Please analyze this text and extract the following structured information, with special focus on departmental risks:

1. Departments: Identify all departments mentioned in the document.
2. Control Objectives: For each department, identify the main control objectives.
3. What Can Go Wrong: For each control objective, identify what could go wrong if the control is not implemented.
4. Risk Levels: Identify the risk level (High, Medium, Low) for each control objective.
5. Control Activities: Identify the control activities in place to address each risk.
6. Gaps: Identify any control or design gaps mentioned in the document.
7. Proposed Controls: Identify any proposed controls to address the gaps.
8. Departmental Risk Analysis: Provide a risk assessment for each department, including risk categories and overall risk level.

Please be comprehensive and detailed in your analysis. Here is the text:

%s

Respond with ONLY a JSON object containing the extracted structured information. The format should be:
{
    "departments": ["string"],
    "control_objectives": [
        {
            "department": "string",
            "objective": "string",
            "what_can_go_wrong": "string",
            "risk_level": "string",
            "control_activities": "string",
            "is_gap": boolean,
            "gap_details": "string",
            "proposed_control": "string"
        }
    ],
    "gaps": [
        {
            "department": "string",
            "control_objective": "string",
            "gap_title": "string",
            "description": "string",
            "risk_impact": "string",
            "proposed_solution": "string"
        }
    ],
    "department_risks": {
        "Department1": {
            "overall_risk_level": "string",
            "risk_categories": {
                "Financial": number,
                "Operational": number,
                "Compliance": number,
                "Strategic": number,
                "Technological": number
            },
            "key_risks": ["string"],
            "summary": "string"
        }
    }
}`, extractedText)
}
