package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"snaudit/prism/internal/schema"
)

var (
	Title  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)

	baseColor     = color.New(color.FgCyan)
	extendedColor = color.New(color.FgGreen)
	customColor   = color.New(color.FgHiYellow)
)

// Category tints a string by table classification.
func Category(cat schema.Category, s string) string {
	switch cat {
	case schema.CategoryBase:
		return baseColor.Sprint(s)
	case schema.CategoryCustom:
		return customColor.Sprint(s)
	default:
		return extendedColor.Sprint(s)
	}
}

// Score renders a 0..1 score as a tinted percentage.
func Score(v float64) string {
	s := fmt.Sprintf("%.0f%%", v*100)
	switch {
	case v >= 0.8:
		return Good.Sprint(s)
	case v >= 0.5:
		return Warn.Sprint(s)
	default:
		return Bad.Sprint(s)
	}
}

// Bar renders a 0..1 value as a block bar.
func Bar(v float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(v * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Table prints a simple aligned table.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Println(headerLine)
	Subtle.Println(sepLine)

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Println(line)
	}
}

// StatusIcon returns a pass/fail icon.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}
