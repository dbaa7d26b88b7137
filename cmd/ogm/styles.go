package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorCreate = lipgloss.Color("#10b981") // green-500
	colorDrop   = lipgloss.Color("#ef4444") // red-500
	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
)

// Styles holds the lipgloss styles for command output.
type Styles struct {
	Create  lipgloss.Style
	Drop    lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
	Label   lipgloss.Style
	Heading lipgloss.Style

	SymbolCreate string
	SymbolDrop   string
	TreeMiddle   string
	TreeEnd      string
}

// DefaultStyles returns the colored styles.
func DefaultStyles() *Styles {
	return &Styles{
		Create:  lipgloss.NewStyle().Foreground(colorCreate),
		Drop:    lipgloss.NewStyle().Foreground(colorDrop),
		Dim:     lipgloss.NewStyle().Foreground(colorDim),
		Bold:    lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(colorAccent),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),

		SymbolCreate: "+",
		SymbolDrop:   "-",
		TreeMiddle:   "├─",
		TreeEnd:      "╰─",
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Create:  plain,
		Drop:    plain,
		Dim:     plain,
		Bold:    plain,
		Label:   plain,
		Heading: plain,

		SymbolCreate: "+",
		SymbolDrop:   "-",
		TreeMiddle:   "|-",
		TreeEnd:      "`-",
	}
}

// stylesFor picks colored styles only when w is a terminal.
func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return DefaultStyles()
	}

	return PlainStyles()
}
