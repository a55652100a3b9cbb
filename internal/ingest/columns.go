package ingest

import "strings"

// columnRole is the semantic role inferred for a header column.
type columnRole int

const (
	roleNone columnRole = iota
	roleDepartment
	roleObjective
	roleRisk
	roleSubprocess
)

// columnRules assign roles by keyword containment, first-match-wins. The
// order is the fixed tie-break priority when a header cell matches several
// roles' keywords: department, then objective, then risk, then sub-process.
var columnRules = []struct {
	role     columnRole
	keywords []string
}{
	{roleDepartment, []string{"area", "department"}},
	{roleObjective, []string{"control objective", "objective"}},
	{roleRisk, []string{"risk", "what can go wrong"}},
	{roleSubprocess, []string{"sub process", "subprocess", "area/"}},
}

// classifyColumns assigns at most one role per header position. Columns
// matching no rule stay unassigned.
func classifyColumns(header []string) map[int]columnRole {
	roles := make(map[int]columnRole)
	for i, cell := range header {
		v := strings.ToLower(cell)
		for _, rule := range columnRules {
			if containsAny(v, rule.keywords) {
				roles[i] = rule.role
				break
			}
		}
	}
	return roles
}

// roleColumns reduces the position->role assignment to one column per role.
// When several columns carry the same role, the right-most wins, matching the
// observable behavior of scanning the header left to right.
func roleColumns(roles map[int]columnRole, width int) map[columnRole]int {
	cols := make(map[columnRole]int)
	for i := 0; i < width; i++ {
		if r, ok := roles[i]; ok {
			cols[r] = i
		}
	}
	return cols
}
