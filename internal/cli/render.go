package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark).
var (
	colorBorder  = lipgloss.Color("#282726")
	colorTextDim = lipgloss.Color("#575653")
	colorText    = lipgloss.Color("#FFFCF0")
	colorAccent  = lipgloss.Color("#3AA99F")
	colorGreen   = lipgloss.Color("#879A39")
	colorOrange  = lipgloss.Color("#DA702C")
	colorRed     = lipgloss.Color("#D14D41")
	colorBlue    = lipgloss.Color("#4385BE")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	dimStyle    = lipgloss.NewStyle().Foreground(colorTextDim)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	alertStyle  = lipgloss.NewStyle().Foreground(colorRed)
	infoStyle   = lipgloss.NewStyle().Foreground(colorBlue)
)

var styled = true

// DisableStyling turns off ANSI styling; used when stdout is not a
// terminal so piped output stays grep-able.
func DisableStyling() { styled = false }

func paint(s lipgloss.Style, text string) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

// Table is a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	if !styled {
		return title
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned for numeric reading.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if len(h) > widths[i] {
				widths[i] = len(h)
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols && lipgloss.Width(cell) > widths[i] {
					widths[i] = lipgloss.Width(cell)
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(paint(headerStyle, t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(paint(dimStyle, left))
		for i, w := range widths {
			b.WriteString(paint(dimStyle, strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(paint(dimStyle, mid))
			}
		}
		b.WriteString(paint(dimStyle, right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(paint(dimStyle, "│"))
		for i, h := range t.Headers {
			b.WriteString(paint(headerStyle, fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(paint(dimStyle, "│"))
			}
		}
		b.WriteString(paint(dimStyle, "│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		b.WriteString(paint(dimStyle, "│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			var padded string
			if i == 0 {
				padded = " " + cell + strings.Repeat(" ", pad) + " "
			} else {
				padded = " " + strings.Repeat(" ", pad) + cell + " "
			}
			b.WriteString(paint(valueStyle, padded))
			if i < numCols-1 {
				b.WriteString(paint(dimStyle, "│"))
			}
		}
		b.WriteString(paint(dimStyle, "│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

// healthLabel returns a colored budget-health indicator.
func healthLabel(h domain.BudgetHealth) string {
	switch h {
	case domain.HealthFavorable:
		return paint(okStyle, "● FAVORABLE")
	case domain.HealthOnTarget:
		return paint(okStyle, "● ON TARGET")
	case domain.HealthAtRisk:
		return paint(warnStyle, "● AT RISK")
	case domain.HealthOverBudget:
		return paint(alertStyle, "● OVER BUDGET")
	case domain.HealthNoBudget:
		return paint(dimStyle, "● NO BUDGET")
	default:
		return paint(dimStyle, "● UNKNOWN")
	}
}

// money formats a decimal amount with two places for table cells.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
