package main

import "github.com/charmbracelet/lipgloss"

type colorPalette struct {
	text      lipgloss.Color
	textMuted lipgloss.Color
	border    lipgloss.Color
	selection lipgloss.Color
	accent    lipgloss.Color
	danger    lipgloss.Color
	warning   lipgloss.Color
	success   lipgloss.Color
}

var palette = colorPalette{
	text:      lipgloss.Color("252"),
	textMuted: lipgloss.Color("245"),
	border:    lipgloss.Color("240"),
	selection: lipgloss.Color("57"),
	accent:    lipgloss.Color("75"),
	danger:    lipgloss.Color("196"),
	warning:   lipgloss.Color("214"),
	success:   lipgloss.Color("78"),
}

// faultyCellStyle is the anomaly highlight applied to every cell of a
// faulty row, on every redraw.
var faultyCellStyle = lipgloss.NewStyle().Foreground(palette.danger)

type styles struct {
	app, topBar, topStatus           lipgloss.Style
	tabActive, tabInactive, tabsRow  lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	toast                            lipgloss.Style

	modalOverlay, modalTitle, modalText lipgloss.Style
	modalError, modalErrorFlash         lipgloss.Style
	fieldInvalid                        lipgloss.Style
	alertDanger                         lipgloss.Style

	dashLabel, dashValue, dashEditing lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:          base,
		topBar:       base.Padding(0, 1),
		topStatus:    base.Foreground(palette.textMuted),
		tabActive:    base.Copy().Bold(true).Padding(0, 1).Foreground(palette.accent),
		tabInactive:  base.Padding(0, 1).Foreground(palette.textMuted),
		tabsRow:      base.Padding(0, 1),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:        base.BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused: base.BorderStyle(focusedBorder).BorderForeground(palette.accent),
		statusBar:    base.Padding(0, 1),
		statusSeg:    base.Padding(0, 1).MarginRight(1),
		statusHint:   base.Foreground(palette.textMuted),
		toast:        base.Padding(0, 1).Foreground(palette.warning),

		modalOverlay:    base.Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(1, 2),
		modalTitle:      base.Copy().Bold(true),
		modalText:       base.Foreground(palette.text),
		modalError:      base.Foreground(palette.danger),
		modalErrorFlash: base.Copy().Bold(true).Foreground(palette.danger),
		fieldInvalid:    base.BorderStyle(panelBorder).BorderForeground(palette.danger),
		alertDanger:     base.Foreground(palette.danger).Padding(0, 1),

		dashLabel:   base.Foreground(palette.textMuted),
		dashValue:   base.Foreground(palette.text),
		dashEditing: base.Copy().Bold(true).Foreground(palette.accent),
	}
}
