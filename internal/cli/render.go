package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

const (
	minCellWidth = 4
	totalLabel   = "total"
)

func cell(style lipgloss.Style, width int, text string) string {
	return style.Width(width).Align(lipgloss.Right).Render(text)
}

// RenderConfusion draws a confusion table with reference labels as rows
// and predicted labels as columns. Cells on the label diagonal are
// highlighted.
func RenderConfusion(ct *model.ConfusionTable) string {
	labelWidth := max(minCellWidth, lipgloss.Width(totalLabel)+1)
	for _, l := range ct.RowLabels {
		labelWidth = max(labelWidth, lipgloss.Width(l)+1)
	}
	width := minCellWidth
	for _, l := range ct.ColLabels {
		width = max(width, lipgloss.Width(l)+1)
	}
	for _, row := range ct.Counts {
		for _, n := range row {
			width = max(width, len(strconv.Itoa(n))+1)
		}
	}

	plain := lipgloss.NewStyle()
	var b strings.Builder

	b.WriteString(cell(plain, labelWidth, "ref"))
	for _, l := range ct.ColLabels {
		b.WriteString(cell(TableHeaderStyle, width, l))
	}
	b.WriteString(cell(SubtleStyle, width+2, totalLabel))
	b.WriteByte('\n')

	for i, truth := range ct.RowLabels {
		b.WriteString(cell(TableHeaderStyle, labelWidth, truth))
		for j, predicted := range ct.ColLabels {
			style := plain
			if truth == predicted {
				style = DiagonalStyle
			}
			b.WriteString(cell(style, width, strconv.Itoa(ct.Counts[i][j])))
		}
		b.WriteString(cell(SubtleStyle, width+2, strconv.Itoa(ct.RowTotal(truth))))
		b.WriteByte('\n')
	}

	b.WriteString(cell(SubtleStyle, labelWidth, totalLabel))
	for _, predicted := range ct.ColLabels {
		b.WriteString(cell(SubtleStyle, width, strconv.Itoa(ct.ColumnTotal(predicted))))
	}
	b.WriteString(cell(SubtleStyle, width+2, strconv.Itoa(ct.Total())))

	return b.String()
}

// RenderRun renders one run as a titled box with its agreement rate.
func RenderRun(name string, ct *model.ConfusionTable, skipped bool) string {
	footer := fmt.Sprintf("agreement %.1f%%", 100*ct.Agreement())
	if ct.Unmatched > 0 {
		footer += fmt.Sprintf(", %d unmatched", ct.Unmatched)
	}
	content := RenderConfusion(ct) + "\n" + SubtleStyle.Render(footer)
	if skipped {
		content += "\n" + FormatWarning("existing column tabulated as found")
	}
	return RenderBox(name, content)
}

// RenderProfile lists boundaries pi1..pi6 for each criterion, one
// criterion per line.
func RenderProfile(p *electre.Profile, criteria []string) (string, error) {
	nameWidth := 0
	for _, c := range criteria {
		nameWidth = max(nameWidth, lipgloss.Width(c))
	}

	values := make([][]string, len(criteria))
	width := minCellWidth
	for i, c := range criteria {
		values[i] = make([]string, electre.ProfileCount)
		for k := 1; k <= electre.ProfileCount; k++ {
			v, err := p.Value(k, c)
			if err != nil {
				return "", err
			}
			values[i][k-1] = strconv.FormatFloat(v, 'g', 6, 64)
			width = max(width, len(values[i][k-1])+2)
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(nameWidth).Render(""))
	for k := 1; k <= electre.ProfileCount; k++ {
		b.WriteString(cell(TableHeaderStyle, width, electre.BoundaryName(k)))
	}
	for i, c := range criteria {
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().Width(nameWidth).Render(c))
		for _, v := range values[i] {
			b.WriteString(cell(lipgloss.NewStyle(), width, v))
		}
	}
	return b.String(), nil
}

// RenderAssignments shows the category of a single product under each run.
func RenderAssignments(names []string, labels map[string]string) string {
	nameWidth := 0
	for _, n := range names {
		nameWidth = max(nameWidth, lipgloss.Width(n))
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = lipgloss.NewStyle().Width(nameWidth+2).Render(n) + TableHeaderStyle.Render(labels[n])
	}
	return strings.Join(lines, "\n")
}
