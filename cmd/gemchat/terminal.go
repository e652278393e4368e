package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/gemcli/gemcli/internal/chat"
)

// promptStyle colors the interactive prompt marker.
var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)

// stdinIsTerminal reports whether stdin is attached to a terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// decorateTerminal attaches a prompt and markdown rendering to interactive
// streams when both ends are terminals. Piped sessions stay plain so output
// remains machine-readable.
func decorateTerminal(streams *chat.InteractiveIO) {
	if !stdinIsTerminal() || !stdoutIsTerminal() {
		return
	}
	streams.Prompt = promptStyle.Render(">") + " "

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return
	}
	streams.Render = func(text string) string {
		rendered, err := renderer.Render(text)
		if err != nil {
			return text
		}
		return strings.TrimRight(rendered, "\n")
	}
}
