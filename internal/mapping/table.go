package mapping

import (
	"fmt"
	"strings"

	"encounterport/internal/source"
	"encounterport/internal/target"
)

// RollTable maps rows to results. Rows without a range take their 1-based position.
// Positional rows are [low, high, text] or [text].
func RollTable(t source.Table) *target.RollTable {
	formula := ""
	if len(t.Rolls) > 0 && t.Rolls[0].Formula.Truthy() {
		formula = t.Rolls[0].Formula.String()
	}
	if formula == "" {
		formula = fmt.Sprintf("1d%d", max(len(t.Rows), 1))
	}

	results := make([]target.TableResult, 0, len(t.Rows))
	for i, r := range t.Rows {
		pos := i + 1
		var cellLo, cellHi source.Scalar
		if len(r.Cells) >= 3 {
			cellLo, cellHi = r.Cell(0), r.Cell(1)
		}
		lo := safeInt(pickFirst(r.RangeAt(0), r.Min, r.From, cellLo), pos)
		hi := safeInt(pickFirst(r.RangeAt(1), r.Max, r.To, cellHi), lo)
		text := pickFirst(r.Text, r.Cell(2), r.Result, r.Cell(0)).String()
		results = append(results, target.TableResult{
			Type:   0,
			Text:   strings.TrimSpace(text),
			Range:  [2]int{lo, max(lo, hi)},
			Weight: safeInt(pickFirst(r.Weight, source.Num(1)), 1),
		})
	}

	return &target.RollTable{
		Name:    t.Name.OrString("Table"),
		Formula: formula,
		Results: results,
		Flags:   target.Flags{Importer: sourceRef(t.Ref())},
	}
}
