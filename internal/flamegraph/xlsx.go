// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// --xlsx-summary generalizes the teacher's internal/report render_excel.go
// (one sheet, a styled header row, one row per table value) to a single
// "Heaviest Stacks" sheet: the topN folded stacks by sample count, their
// percentage of the total, and the raw stack text.
package flamegraph

import (
	"sort"

	"github.com/xuri/excelize/v2"

	"flamefold/internal/ferrors"
)

// stackTotal pairs a full root;...;leaf stack string with its aggregate
// sample count, gathered by walking leaves of the merged trie.
type stackTotal struct {
	stack string
	count uint64
}

// WriteXlsxSummary writes the topN heaviest leaf stacks under root to an
// .xlsx workbook at path.
func WriteXlsxSummary(root *Node, total uint64, topN int, path string) error {
	if topN <= 0 {
		topN = 20
	}
	leaves := collectLeaves(root, nil)
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].count > leaves[j].count })
	if len(leaves) > topN {
		leaves = leaves[:topN]
	}

	f := excelize.NewFile()
	const sheet = "Heaviest Stacks"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	headers := []string{"Rank", "Samples", "Percent", "Stack"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, lt := range leaves {
		row := i + 2
		pct := 0.0
		if total > 0 {
			pct = float64(lt.count) / float64(total) * 100
		}
		setRow(f, sheet, row, i+1, lt.count, pct, lt.stack)
	}
	_ = f.SetColWidth(sheet, "D", "D", 80)

	if err := f.SaveAs(path); err != nil {
		return ferrors.IO("writing xlsx summary "+path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row, rank int, count uint64, pct float64, stack string) {
	rankCell, _ := excelize.CoordinatesToCellName(1, row)
	countCell, _ := excelize.CoordinatesToCellName(2, row)
	pctCell, _ := excelize.CoordinatesToCellName(3, row)
	stackCell, _ := excelize.CoordinatesToCellName(4, row)
	_ = f.SetCellValue(sheet, rankCell, rank)
	_ = f.SetCellValue(sheet, countCell, count)
	_ = f.SetCellValue(sheet, pctCell, pct)
	_ = f.SetCellValue(sheet, stackCell, stack)
}

// collectLeaves walks n's trie and returns one stackTotal per leaf
// (a node with no children), joining the path from root with ";".
func collectLeaves(n *Node, path []string) []stackTotal {
	if len(n.Children) == 0 {
		if len(path) == 0 {
			return nil
		}
		return []stackTotal{{stack: joinSemicolon(path), count: n.Samples}}
	}
	var out []stackTotal
	for _, name := range n.sortedChildNames() {
		c := n.Children[name]
		out = append(out, collectLeaves(c, append(append([]string{}, path...), name))...)
	}
	return out
}

func joinSemicolon(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ";" + p
	}
	return out
}
