package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type toastExpireMsg struct {
	deadline time.Time
}

type keyMap struct {
	quit       key.Binding
	nextTab    key.Binding
	reload     key.Binding
	sortCycle  key.Binding
	sortFlip   key.Binding
	filter     key.Binding
	copyRow    key.Binding
	approve    key.Binding
	decline    key.Binding
	viewDetail key.Binding
	journal    key.Binding
	toggleHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		sortCycle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		sortFlip: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort direction"),
		),
		filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		copyRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy name"),
		),
		approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		decline: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "decline"),
		),
		viewDetail: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "payment detail"),
		),
		journal: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "journal"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.reload, k.approve, k.decline, k.viewDetail, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextTab, k.reload, k.sortCycle, k.sortFlip, k.filter},
		{k.approve, k.decline, k.viewDetail, k.copyRow, k.journal},
		{k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	cfg    *consoleConfig
	eps    endpoints
	client *http.Client
	header http.Header

	tabs   []viewID
	active viewID
	tables map[viewID]*recordTable

	dashboard   dashboardPanel
	taxField    *editableField
	periodField *editableField
	dashCursor  int

	detail *detailModal
	action *actionModal

	journal     *decisionJournal
	journalView viewport.Model
	showJournal bool

	telemetry *telemetryLogger

	spinner spinner.Model

	showHelp bool
	helpView viewport.Model

	toastMessage string
	toastExpires time.Time
}

func initialModel(cfg *consoleConfig) *model {
	s := newStyles()
	eps := resolveEndpoints(cfg.BaseURL, cfg.CorporationID)
	client := newFeedClient(time.Duration(cfg.TimeoutSec) * time.Second)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	journal, err := openDecisionJournal()
	if err != nil {
		journal = nil
	}

	telemetryPath := resolveConfigDir() + "/telemetry.jsonl"
	telemetry := newTelemetryLogger(telemetryPath, newTelemetrySessionID(), resolveTelemetryUserID())

	m := &model{
		styles:      s,
		keys:        newKeyMap(),
		help:        help.New(),
		cfg:         cfg,
		eps:         eps,
		client:      client,
		header:      cfg.requestHeader(),
		tabs:        []viewID{viewMembers, viewPayments, viewPaymentSystem, viewAdministration, viewManage},
		active:      viewMembers,
		tables:      buildTables(eps, s),
		dashboard:   dashboardPanel{endpoint: eps.dashboard},
		taxField:    newEditableField("tax_amount", "Tax Amount", iskFormat, viewPaymentSystem),
		periodField: newEditableField("tax_period", "Tax Period", daysFormat, viewPaymentSystem),
		detail:      &detailModal{},
		action:      newActionModal(),
		journal:     journal,
		journalView: viewport.New(60, 16),
		telemetry:   telemetry,
		spinner:     sp,
		helpView:    viewport.New(72, 20),
	}
	return m
}

func buildTables(eps endpoints, s styles) map[viewID]*recordTable {
	nameCol := columnSpec{title: "Name", width: 24, sortable: true, value: func(r record) string { return r.CharacterName }}
	statusCol := columnSpec{title: "Status", width: 14, value: func(r record) string { return r.Status }}
	walletCol := columnSpec{title: "Wallet", width: 16, sortable: true, value: func(r record) string { return formatISK(float64(r.Wallet)) }}
	hasPaidCol := columnSpec{title: "Has Paid", width: 10, value: func(r record) string { return formatBoolMark(bool(r.HasPaid)) }}

	return map[viewID]*recordTable{
		viewMembers: newRecordTable(viewMembers, "Members", eps.members, []columnSpec{
			nameCol,
			statusCol,
			{title: "Joined", width: 12, sortable: true, value: func(r record) string { return r.Joined }},
		}, s),
		viewPayments: newRecordTable(viewPayments, "Payments", eps.payments, []columnSpec{
			nameCol,
			{title: "Amount", width: 16, value: func(r record) string { return formatISK(float64(r.Amount)) }},
			statusCol,
			{title: "Approved", width: 12, value: func(r record) string { return r.Approved }},
			{title: "Date", width: 12, sortable: true, value: func(r record) string { return r.PaymentDate }},
		}, s),
		viewPaymentSystem: newRecordTable(viewPaymentSystem, "Payment System", eps.paymentSystem, []columnSpec{
			nameCol, statusCol, walletCol, hasPaidCol,
		}, s),
		viewAdministration: newRecordTable(viewAdministration, "Administration", eps.administration, []columnSpec{
			nameCol, statusCol, walletCol, hasPaidCol,
		}, s),
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, table := range m.tables {
		cmds = append(cmds, table.reloadCmd(m.client, m.header))
	}
	cmds = append(cmds, m.dashboard.reloadCmd(m.client, m.header))
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.applyLayout()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		cmd := m.handleKey(message)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case toastExpireMsg:
		if !message.deadline.Before(m.toastExpires) {
			m.toastMessage = ""
		}

	case tableLoadedMsg:
		if table, ok := m.tables[message.view]; ok && table.applyLoad(message) {
			m.telemetry.Emit(telemetryEvent{
				Event:         "table_loaded",
				CorporationID: m.cfg.CorporationID,
				View:          message.view.String(),
			})
		}

	case detailLoadedMsg:
		m.detail.applyLoad(message)

	case dashboardLoadedMsg:
		if m.dashboard.applyLoad(message) && message.err == nil {
			info := m.dashboard.info
			m.taxField.bind(info.ID, trimFloat(float64(info.TaxAmount)), m.eps.updateTax)
			m.periodField.bind(info.ID, trimFloat(float64(info.TaxPeriod)), m.eps.updatePeriod)
		}

	case attentionClearMsg:
		m.action.clearAttention(message)

	case actionResultMsg:
		if cmd := m.handleActionResult(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case fieldSavedMsg:
		if cmd := m.handleFieldSaved(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if m.action.active() {
			if cmd := m.action.update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if m.taxField.editing || m.periodField.editing {
			if cmd := m.taxField.update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
			if cmd := m.periodField.update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		default:
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return cmd
		}
		return nil
	}

	if m.showJournal {
		switch msg.String() {
		case "l", "esc", "q":
			m.showJournal = false
		default:
			var cmd tea.Cmd
			m.journalView, cmd = m.journalView.Update(msg)
			return cmd
		}
		return nil
	}

	if m.action.active() {
		return m.handleActionKey(msg)
	}

	if m.detail.visible {
		return m.handleDetailKey(msg)
	}

	return m.handleGlobalKey(msg)
}

func (m *model) handleActionKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.action.hide()
		return nil
	case "enter":
		cmd := m.action.confirm(m.client, m.cfg.CSRFToken, m.header)
		if m.action.state == modalSubmitting {
			m.telemetry.Emit(telemetryEvent{
				Event:         "action_submitted",
				CorporationID: m.cfg.CorporationID,
				View:          m.action.originView.String(),
				ExtraJSON:     map[string]string{"kind": m.action.kind},
			})
		}
		return cmd
	case "ctrl+x":
		m.action.dismissError()
		return nil
	}
	return m.action.update(msg)
}

func (m *model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.detail.hide()
	case "up", "k":
		m.detail.moveCursor(-1)
	case "down", "j":
		m.detail.moveCursor(1)
	case "a", "d":
		rec, ok := m.detail.selectedRecord()
		if !ok {
			return nil
		}
		kind := "approve"
		if msg.String() == "d" {
			kind = "decline"
		}
		m.action.open(m.actionRequestFor(rec, kind, viewPayments, m.detail))
	case "r":
		return m.detail.showCmd(m.client, m.header)
	}
	return nil
}

func (m *model) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
		m.helpView.SetContent(renderMarkdown(helpMarkdown))
		m.helpView.GotoTop()
		return nil
	case key.Matches(msg, m.keys.journal):
		m.openJournal()
		return nil
	case key.Matches(msg, m.keys.nextTab):
		m.cycleTab(1)
		return nil
	}

	switch msg.String() {
	case "shift+tab":
		m.cycleTab(-1)
		return nil
	case "1", "2", "3", "4", "5":
		index, _ := strconv.Atoi(msg.String())
		if index >= 1 && index <= len(m.tabs) {
			m.active = m.tabs[index-1]
			m.applyLayout()
		}
		return nil
	}

	if m.active == viewManage {
		return m.handleManageKey(msg)
	}

	table := m.tables[m.active]
	if table == nil {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.reload):
		return table.reloadCmd(m.client, m.header)
	case key.Matches(msg, m.keys.sortCycle):
		table.cycleSort()
		return nil
	case key.Matches(msg, m.keys.sortFlip):
		table.toggleSortDirection()
		return nil
	case key.Matches(msg, m.keys.filter):
		table.cycleStatusFilter()
		return nil
	case key.Matches(msg, m.keys.copyRow):
		if rec, ok := table.selectedRecord(); ok {
			if err := clipboard.WriteAll(rec.CharacterName); err == nil {
				return m.setToast("copied " + rec.CharacterName)
			}
		}
		return nil
	case key.Matches(msg, m.keys.approve), key.Matches(msg, m.keys.decline):
		if m.active != viewPayments {
			return nil
		}
		rec, ok := table.selectedRecord()
		if !ok {
			return nil
		}
		kind := "approve"
		if key.Matches(msg, m.keys.decline) {
			kind = "decline"
		}
		m.action.open(m.actionRequestFor(rec, kind, m.active, nil))
		return nil
	case key.Matches(msg, m.keys.viewDetail):
		if m.active != viewPaymentSystem && m.active != viewAdministration {
			return nil
		}
		rec, ok := table.selectedRecord()
		if !ok {
			return nil
		}
		m.detail.title = "Payments — " + rec.CharacterName
		m.detail.endpoint = m.eps.userPayments(rec.ID)
		return m.detail.showCmd(m.client, m.header)
	}

	return table.update(msg)
}

func (m *model) handleManageKey(msg tea.KeyMsg) tea.Cmd {
	fields := []*editableField{m.taxField, m.periodField}
	current := fields[m.dashCursor]

	if current.editing {
		switch msg.String() {
		case "esc":
			current.cancelEdit()
			return nil
		case "enter":
			return current.submitCmd(m.client, m.cfg.CSRFToken, m.header)
		}
		return current.update(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.dashCursor > 0 {
			m.dashCursor--
		}
	case "down", "j":
		if m.dashCursor < len(fields)-1 {
			m.dashCursor++
		}
	case "enter":
		current.beginEdit()
	case "r":
		return m.dashboard.reloadCmd(m.client, m.header)
	}
	return nil
}

func (m *model) actionRequestFor(rec record, kind string, origin viewID, parent *detailModal) actionRequest {
	if act, ok := rec.action(kind); ok {
		return actionRequest{
			kind:       kind,
			url:        act.URL,
			title:      act.Title,
			text:       act.Text,
			originView: origin,
			parent:     parent,
		}
	}
	title := "Approve Payment"
	endpoint := m.eps.approvePayment(rec.ID)
	if kind == "decline" {
		title = "Decline Payment"
		endpoint = m.eps.declinePayment(rec.ID)
	}
	return actionRequest{
		kind:       kind,
		url:        endpoint,
		title:      title,
		text:       fmt.Sprintf("%s — %s", rec.CharacterName, formatISK(float64(rec.Amount))),
		originView: origin,
		parent:     parent,
	}
}

func (m *model) handleActionResult(msg actionResultMsg) tea.Cmd {
	succeeded := m.action.applyResult(msg)
	if !succeeded {
		if msg.binding == m.action.binding && m.action.errText != "" && m.journal != nil {
			_ = m.journal.Record(decisionEntry{
				CorporationID: m.cfg.CorporationID,
				Action:        m.action.kind,
				Target:        m.action.title,
				Note:          m.action.reason.Value(),
				Outcome:       "failed: " + m.action.errText,
			})
		}
		return nil
	}

	origin := m.action.originView
	parent := m.action.parent
	kind := m.action.kind
	target := m.action.title
	note := m.action.reason.Value()
	m.action.hide()

	if m.journal != nil {
		_ = m.journal.Record(decisionEntry{
			CorporationID: m.cfg.CorporationID,
			Action:        kind,
			Target:        target,
			Note:          note,
			Outcome:       msg.envelope.Message,
		})
	}
	m.telemetry.Emit(telemetryEvent{
		Event:         "action_succeeded",
		CorporationID: m.cfg.CorporationID,
		View:          origin.String(),
		ExtraJSON:     map[string]string{"kind": kind},
	})

	decision := resolveRefresh(parent, origin)
	if decision.reopenParent != nil {
		return decision.reopenParent.showCmd(m.client, m.header)
	}
	if table, ok := m.tables[decision.reloadView]; ok && decision.reloadTable {
		return table.reloadCmd(m.client, m.header)
	}
	return nil
}

func (m *model) handleFieldSaved(msg fieldSavedMsg) tea.Cmd {
	for _, field := range []*editableField{m.taxField, m.periodField} {
		if msg.field != field.name {
			continue
		}
		if msg.seq != field.issuedSeq {
			return nil
		}
		reload := field.applySave(msg)
		if !reload {
			if field.errText != "" {
				return m.setToast(field.errText)
			}
			return nil
		}
		if m.journal != nil {
			_ = m.journal.Record(decisionEntry{
				CorporationID: m.cfg.CorporationID,
				Action:        "edit",
				Target:        field.label,
				Note:          msg.newValue,
				Outcome:       msg.envelope.Message,
			})
		}
		m.telemetry.Emit(telemetryEvent{
			Event:         "field_saved",
			CorporationID: m.cfg.CorporationID,
			View:          viewManage.String(),
			ExtraJSON:     map[string]string{"field": field.name},
		})
		cmds := []tea.Cmd{m.dashboard.reloadCmd(m.client, m.header)}
		if table, ok := m.tables[field.dependent]; ok {
			cmds = append(cmds, table.reloadCmd(m.client, m.header))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m *model) openJournal() {
	entries, err := m.journal.Recent(50)
	var b strings.Builder
	if err != nil {
		b.WriteString("journal unavailable: " + err.Error())
	} else if len(entries) == 0 {
		b.WriteString("No decisions recorded yet.")
	} else {
		for _, entry := range entries {
			fmt.Fprintf(&b, "%s  %-8s %-28s %s\n",
				entry.At.Local().Format("2006-01-02 15:04"), entry.Action, entry.Target, entry.Outcome)
		}
	}
	m.journalView.SetContent(b.String())
	m.journalView.GotoTop()
	m.showJournal = true
}

func (m *model) cycleTab(delta int) {
	current := 0
	for i, tab := range m.tabs {
		if tab == m.active {
			current = i
			break
		}
	}
	next := (current + delta + len(m.tabs)) % len(m.tabs)
	m.active = m.tabs[next]
	m.applyLayout()
}

func (m *model) setToast(message string) tea.Cmd {
	m.toastMessage = message
	m.toastExpires = time.Now().Add(3 * time.Second)
	deadline := m.toastExpires
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastExpireMsg{deadline: deadline}
	})
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.height - 5
	if bodyHeight < 6 {
		bodyHeight = 6
	}
	for _, table := range m.tables {
		table.setSize(m.width-2, bodyHeight)
	}
	m.helpView.Width = min(m.width-6, 76)
	m.helpView.Height = bodyHeight - 2
	m.journalView.Width = m.width - 6
	m.journalView.Height = bodyHeight - 2
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func trimFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
