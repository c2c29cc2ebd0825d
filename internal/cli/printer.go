package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb4934"))
)

// printer печатает результаты команд. Без color стили не применяются,
// вывод остаётся пригодным для grep и пайпов.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, color bool) *printer {
	return &printer{w: w, color: color}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(styleGreen, fmt.Sprintf(format, args...)))
}

func (p *printer) status(active bool) string {
	if active {
		return p.render(styleGreen, "active")
	}
	return p.render(styleRed, "pending")
}

// table выравнивает колонки по видимой ширине, с линией под заголовком.
func (p *printer) table(headers []string, rows [][]string) {
	const gap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = p.render(*style, cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+gap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}

	fmt.Fprint(p.w, b.String())
}
