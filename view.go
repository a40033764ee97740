package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	if m.width == 0 {
		return "starting…"
	}

	top := m.renderTopBar()
	tabs := m.renderTabs()
	body := m.renderBody()
	status := m.renderStatusBar()

	if overlay := m.renderOverlay(); overlay != "" {
		bodyHeight := m.height - lipgloss.Height(top) - lipgloss.Height(tabs) - lipgloss.Height(status)
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, overlay)
	}

	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, top, tabs, body, status))
}

func (m *model) renderTopBar() string {
	title := "taxdesk"
	if m.dashboard.visible && m.dashboard.info.CorporationName != "" {
		title += " — " + m.dashboard.info.CorporationName
	}
	left := m.styles.topBar.Render(title)
	right := m.styles.topStatus.Render(fmt.Sprintf("corporation %d", m.cfg.CorporationID))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *model) renderTabs() string {
	labels := map[viewID]string{
		viewMembers:        "Members",
		viewPayments:       "Payments",
		viewPaymentSystem:  "Payment System",
		viewAdministration: "Administration",
		viewManage:         "Manage",
	}
	var parts []string
	for i, tab := range m.tabs {
		label := fmt.Sprintf("%d %s", i+1, labels[tab])
		if tab == m.active {
			parts = append(parts, m.styles.tabActive.Render(label))
		} else {
			parts = append(parts, m.styles.tabInactive.Render(label))
		}
	}
	return m.styles.tabsRow.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *model) renderBody() string {
	if m.active == viewManage {
		return m.renderManagePanel()
	}
	table := m.tables[m.active]
	if table == nil {
		return ""
	}
	return table.view(m.styles, true)
}

func (m *model) renderManagePanel() string {
	s := m.styles
	var parts []string

	if !m.dashboard.visible {
		parts = append(parts, s.statusHint.Render("loading…"))
	} else if m.dashboard.errText != "" {
		parts = append(parts, s.alertDanger.Render(m.dashboard.errText))
	} else {
		info := m.dashboard.info
		parts = append(parts,
			s.columnTitle.Render(info.CorporationName),
			s.dashLabel.Render("Wallet updated: ")+s.dashValue.Render(info.LastUpdateWallet),
			s.dashLabel.Render("Members updated: ")+s.dashValue.Render(info.LastUpdateMembers),
			s.dashLabel.Render("Payments updated: ")+s.dashValue.Render(info.LastUpdatePayments),
			s.dashLabel.Render("Payment system updated: ")+s.dashValue.Render(info.LastUpdatePaymentSystem),
			"",
		)
		fields := []*editableField{m.taxField, m.periodField}
		for i, field := range fields {
			marker := "  "
			if i == m.dashCursor {
				marker = "> "
			}
			line := marker + s.dashLabel.Render(field.label+": ")
			if field.editing {
				line += s.dashEditing.Render(field.input.View())
			} else {
				line += s.dashValue.Render(field.display())
			}
			parts = append(parts, line)
			if field.errText != "" {
				parts = append(parts, "    "+s.modalError.Render(field.errText))
			}
		}
		parts = append(parts, "", s.statusHint.Render("enter edit raw value • esc cancel • saving reloads Payment System"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return s.panel.Width(m.width - 2).Render(body)
}

func (m *model) renderOverlay() string {
	overlayWidth := min(m.width-8, 64)
	switch {
	case m.showHelp:
		return m.styles.modalOverlay.Render(m.helpView.View())
	case m.showJournal:
		title := m.styles.modalTitle.Render("Decision journal")
		return m.styles.modalOverlay.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.journalView.View()))
	case m.action.active():
		// action modal stacks above its parent detail view
		return m.action.view(m.styles, overlayWidth)
	case m.detail.visible:
		return m.detail.view(m.styles, overlayWidth)
	}
	return ""
}

func (m *model) renderStatusBar() string {
	segments := []string{m.styles.statusSeg.Render(m.active.String())}
	if m.toastMessage != "" {
		segments = append(segments, m.styles.toast.Render(m.toastMessage))
	}
	segments = append(segments, m.styles.statusHint.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return m.styles.statusBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, segments...))
}
