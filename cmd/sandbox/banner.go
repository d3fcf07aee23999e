package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Width(14)
	textStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1)
)

var controls = [][2]string{
	{"W A S D", "fly"},
	{"Space / Shift", "up / down"},
	{"Mouse", "look"},
	{"Left click", "launch a box"},
	{"Scroll", "zoom"},
	{"Esc / Tab", "pause and release the cursor"},
	{"F11", "toggle fullscreen"},
	{"Q", "quit"},
}

// controlsBanner renders the key bindings and the active render settings.
func controlsBanner(cfg config.Config) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.Window.Title))
	b.WriteString("\n\n")
	for _, c := range controls {
		b.WriteString(keyStyle.Render(c[0]) + textStyle.Render(c[1]) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d frames in flight, %s, %.0f Hz physics",
		cfg.Render.FramesInFlight, cfg.Render.PresentMode, cfg.Physics.TickRate)))
	if cfg.Source != "" {
		b.WriteString("\n" + dimStyle.Render("tuning reloads from "+cfg.Source))
	}
	return boxStyle.Render(b.String())
}
