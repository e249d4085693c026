package tools

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// parsePDF extracts the plain text of every page.
func parsePDF(f afero.File, size int64) (string, error) {
	r, err := pdf.NewReader(f, size)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			fmt.Fprintf(&sb, "[page %d unreadable: %v]\n", i, err)
			continue
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n\n", i, cleanText(text))
	}
	return sb.String(), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}

// parseExcel renders every sheet as a markdown table.
func parseExcel(f afero.File, _ int64) (string, error) {
	book, err := excelize.OpenReader(f)
	if err != nil {
		return "", err
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		switch {
		case err != nil:
			fmt.Fprintf(&sb, "--- Sheet: %s (error: %v) ---\n\n", sheet, err)
		case len(rows) == 0:
			fmt.Fprintf(&sb, "--- Sheet: %s (empty) ---\n\n", sheet)
		default:
			fmt.Fprintf(&sb, "--- Sheet: %s ---\n%s\n", sheet, rowsToMarkdown(rows))
		}
	}
	return sb.String(), nil
}

func rowsToMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	var sb strings.Builder
	for i, row := range rows {
		cells := make([]string, cols)
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.ReplaceAll(strings.ReplaceAll(row[j], "|", "\\|"), "\n", " ")
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return sb.String()
}
