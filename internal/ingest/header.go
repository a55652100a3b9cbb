package ingest

import "strings"

// headerKeywords mark a row as a plausible header when any cell contains one.
var headerKeywords = []string{
	"area", "type", "risk", "control", "process", "objective", "what can go wrong",
}

// locateHeader scans the first scanRows rows of a sheet for header
// candidates and returns the last one found. Multiple header-like rows occur
// when a sheet opens with section titles; the later row is assumed to be the
// real column header. Absence is a valid outcome and routes the sheet to the
// fallback path.
func locateHeader(rows [][]string, scanRows int) (idx int, values []string, ok bool) {
	limit := scanRows
	if len(rows) < limit {
		limit = len(rows)
	}

	idx = -1
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if containsAny(strings.ToLower(cell), headerKeywords) {
				idx = i
				values = rows[i]
				break
			}
		}
	}
	return idx, values, idx >= 0
}
