package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	theme := flag.String("theme", "", "Help rendering theme: auto, light, or dark")
	flag.Parse()

	cfg, cfgPath := loadConsoleConfig()
	if *theme == "" {
		*theme = cfg.Theme
	}
	setMarkdownTheme(markdownThemeFromString(*theme))
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "taxdesk: %v (config: %s)\n", err, cfgPath)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(
		initialModel(cfg),
		tea.WithAltScreen(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
