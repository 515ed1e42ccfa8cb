// Package report renders pipeline diagnostics as markdown tables.
package report

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"doimeta/internal/models"
	"doimeta/internal/normalizer"
)

// FieldErrors renders one row per failed field, required fields first. It
// returns "" when errs is empty.
func FieldErrors(errs normalizer.FieldErrors) string {
	if len(errs) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(errs))

	for _, f := range errs.Fields() {
		if !errs.Has(f) {
			continue
		}

		kind := "optional"
		if f.IsRequired() {
			kind = "required"
		}

		rows = append(rows, []string{f.String(), kind, errs[f].Error()})
	}

	return strings.Join(Table([]string{"Field", "Kind", "Error"}, rows), "\n") + "\n"
}

// Document renders the keys of doc with the number of entries each carries.
func Document(doc models.Document) string {
	keys := doc.Keys()
	sort.Strings(keys)

	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, describe(doc[k])}
	}

	return strings.Join(Table([]string{"Key", "Value"}, rows), "\n") + "\n"
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case models.Types:
		return t.ResourceType + " / " + t.ResourceTypeGeneral
	case models.Identifier:
		return t.IdentifierType + " " + t.Identifier
	}

	if normalizer.HasValue(v) {
		return fmt.Sprintf("%d entries", reflect.ValueOf(v).Len())
	}

	return fmt.Sprint(v)
}

// Table lays out a markdown table with every column padded to the display
// width of its widest cell, so wide runes line up in a terminal.
func Table(header []string, rows [][]string) []string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cell(c)
		}

		table = append(table, cells)
	}

	// Calculate max widths (using display width), never narrower than "---"
	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = 3
	}

	for _, row := range table {
		for i := 0; i < len(row) && i < colCount; i++ {
			if width := runewidth.StringWidth(row[i]); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	result := make([]string, 0, len(table)+1)

	for i, row := range table {
		result = append(result, line(row, colWidths, false))

		if i == 0 {
			result = append(result, line(nil, colWidths, true))
		}
	}

	return result
}

func line(row []string, colWidths []int, separator bool) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		sb.WriteString(" ")

		if separator {
			sb.WriteString(strings.Repeat("-", width))
		} else {
			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(content)

			if padding := width - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

// cell makes s safe to place inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	return strings.ReplaceAll(s, "|", `\|`)
}
