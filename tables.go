package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewID int

const (
	viewMembers viewID = iota
	viewPayments
	viewPaymentSystem
	viewAdministration
	viewManage
)

func (v viewID) String() string {
	switch v {
	case viewMembers:
		return "members"
	case viewPayments:
		return "payments"
	case viewPaymentSystem:
		return "payment-system"
	case viewAdministration:
		return "administration"
	case viewManage:
		return "manage"
	default:
		return "unknown"
	}
}

type columnSpec struct {
	title    string
	width    int
	sortable bool
	value    func(r record) string
}

type tableLoadedMsg struct {
	view    viewID
	seq     int
	records []record
	err     error
}

// recordTable owns one view's table lifecycle: fetch, bind, redraw,
// reload. It starts hidden and is revealed by the first completed
// load, successful or not.
type recordTable struct {
	id       viewID
	title    string
	endpoint string
	columns  []columnSpec
	model    table.Model

	records  []record
	filtered []record
	visible  bool
	errRow   string

	sortColumn int
	sortAsc    bool

	statusFilter string

	// reload ordering: only a response carrying the latest issued
	// sequence may touch the table (last-writer-wins).
	issuedSeq  int
	appliedSeq int

	width  int
	height int
}

func newRecordTable(view viewID, title, endpoint string, columns []columnSpec, s styles) *recordTable {
	cols := make([]table.Column, len(columns))
	for i, spec := range columns {
		cols[i] = table.Column{Title: spec.title, Width: spec.width}
	}
	model := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.textMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		Padding(0, 1)
	tStyles.Cell = lipgloss.NewStyle().Padding(0, 1)
	tStyles.Selected = lipgloss.NewStyle().
		Foreground(palette.text).
		Background(palette.selection).
		Padding(0, 1)
	model.SetStyles(tStyles)

	t := &recordTable{
		id:       view,
		title:    title,
		endpoint: endpoint,
		columns:  columns,
		model:    model,
		sortAsc:  true,
	}
	t.sortColumn = t.defaultSortColumn()
	return t
}

// defaultSortColumn is the display-name column; falls back to the
// first sortable one.
func (t *recordTable) defaultSortColumn() int {
	for i, spec := range t.columns {
		if spec.title == "Name" && spec.sortable {
			return i
		}
	}
	for i, spec := range t.columns {
		if spec.sortable {
			return i
		}
	}
	return -1
}

// reloadCmd issues a fetch tagged with a fresh sequence number. Safe
// to call while a previous reload is in flight; the newer sequence
// supersedes the older one.
func (t *recordTable) reloadCmd(client *http.Client, header http.Header) tea.Cmd {
	t.issuedSeq++
	seq := t.issuedSeq
	view := t.id
	endpoint := t.endpoint
	return func() tea.Msg {
		records, err := fetchDataset(client, endpoint, header)
		return tableLoadedMsg{view: view, seq: seq, records: records, err: err}
	}
}

// applyLoad binds a completed fetch. Responses that are not from the
// latest issued request are discarded. Returns whether the table
// changed.
func (t *recordTable) applyLoad(msg tableLoadedMsg) bool {
	if msg.view != t.id || msg.seq != t.issuedSeq {
		return false
	}
	t.appliedSeq = msg.seq
	t.visible = true
	if msg.err != nil {
		t.records = nil
		t.errRow = fetchRowMessage(msg.err)
	} else {
		t.errRow = ""
		t.records = msg.records
	}
	t.rebuildRows()
	return true
}

func fetchRowMessage(err error) string {
	if ferr, ok := err.(*fetchError); ok {
		return ferr.rowMessage()
	}
	return "Error loading data"
}

// rebuildRows recomputes every row from the record set, so per-row
// policy (faulty highlight, filter, sort) holds on every redraw.
func (t *recordTable) rebuildRows() {
	if t.errRow != "" {
		row := make(table.Row, len(t.columns))
		for i := range row {
			row[i] = ""
		}
		slot := 0
		if len(row) > 1 {
			slot = 1
		}
		row[slot] = t.errRow
		t.model.SetRows([]table.Row{row})
		return
	}

	t.filtered = filterByStatus(t.records, t.statusFilter)
	sortRecords(t.filtered, t.columns, t.sortColumn, t.sortAsc)

	rows := make([]table.Row, len(t.filtered))
	for i, rec := range t.filtered {
		row := make(table.Row, len(t.columns))
		for j, spec := range t.columns {
			cell := spec.value(rec)
			if rec.IsFaulty {
				cell = faultyCellStyle.Render(cell)
			}
			row[j] = cell
		}
		rows[i] = row
	}
	t.model.SetRows(rows)
	if cursor := t.model.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		t.model.SetCursor(len(rows) - 1)
	}
}

func filterByStatus(records []record, status string) []record {
	out := append([]record(nil), records...)
	if status == "" {
		return out
	}
	kept := out[:0]
	for _, rec := range out {
		if rec.Status == status {
			kept = append(kept, rec)
		}
	}
	return kept
}

func sortRecords(records []record, columns []columnSpec, column int, asc bool) {
	if column < 0 || column >= len(columns) || !columns[column].sortable {
		return
	}
	value := columns[column].value
	sort.SliceStable(records, func(i, j int) bool {
		left := strings.ToLower(value(records[i]))
		right := strings.ToLower(value(records[j]))
		if asc {
			return left < right
		}
		return left > right
	})
}

// cycleSort advances to the next sortable column; cycling past the
// last one flips direction back on the default column.
func (t *recordTable) cycleSort() {
	next := t.sortColumn
	for i := 1; i <= len(t.columns); i++ {
		candidate := (t.sortColumn + i) % len(t.columns)
		if t.columns[candidate].sortable {
			next = candidate
			break
		}
	}
	if next == t.defaultSortColumn() && t.sortColumn != t.defaultSortColumn() {
		t.sortAsc = true
	}
	t.sortColumn = next
	t.rebuildRows()
}

func (t *recordTable) toggleSortDirection() {
	t.sortAsc = !t.sortAsc
	t.rebuildRows()
}

// cycleStatusFilter rotates through the distinct status values present
// in the dataset, ending on "no filter".
func (t *recordTable) cycleStatusFilter() {
	values := distinctStatuses(t.records)
	if len(values) == 0 {
		t.statusFilter = ""
		return
	}
	if t.statusFilter == "" {
		t.statusFilter = values[0]
	} else {
		next := ""
		for i, value := range values {
			if value == t.statusFilter && i+1 < len(values) {
				next = values[i+1]
				break
			}
		}
		t.statusFilter = next
	}
	t.rebuildRows()
}

func distinctStatuses(records []record) []string {
	seen := map[string]bool{}
	var values []string
	for _, rec := range records {
		if rec.Status == "" || seen[rec.Status] {
			continue
		}
		seen[rec.Status] = true
		values = append(values, rec.Status)
	}
	sort.Strings(values)
	return values
}

func (t *recordTable) selectedRecord() (record, bool) {
	cursor := t.model.Cursor()
	if t.errRow != "" || cursor < 0 || cursor >= len(t.filtered) {
		return record{}, false
	}
	return t.filtered[cursor], true
}

func (t *recordTable) setSize(width, height int) {
	t.width = width
	t.height = height
	if height < 4 {
		height = 4
	}
	t.model.SetHeight(height - 3)
	t.fitColumns(width)
}

func (t *recordTable) fitColumns(width int) {
	total := 0
	for _, spec := range t.columns {
		total += spec.width + 2
	}
	cols := make([]table.Column, len(t.columns))
	for i, spec := range t.columns {
		w := spec.width
		if total > 0 && width > 0 {
			w = spec.width * (width - 2*len(t.columns)) / total
			if w < 4 {
				w = 4
			}
		}
		cols[i] = table.Column{Title: spec.title, Width: w}
	}
	t.model.SetColumns(cols)
	t.rebuildRows()
}

func (t *recordTable) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return cmd
}

func (t *recordTable) view(s styles, focused bool) string {
	header := s.columnTitle.Render(t.title) + t.sortBadge(s) + t.filterBadge(s)
	if !t.visible {
		body := lipgloss.JoinVertical(lipgloss.Left, header, s.statusHint.Render("loading…"))
		return s.panel.Width(t.width).Render(body)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, header, t.model.View())
	if focused {
		return s.panelFocused.Width(t.width).Render(body)
	}
	return s.panel.Width(t.width).Render(body)
}

func (t *recordTable) sortBadge(s styles) string {
	if t.sortColumn < 0 || t.sortColumn >= len(t.columns) {
		return ""
	}
	arrow := "↑"
	if !t.sortAsc {
		arrow = "↓"
	}
	return s.statusHint.Render(fmt.Sprintf(" %s%s", t.columns[t.sortColumn].title, arrow))
}

func (t *recordTable) filterBadge(s styles) string {
	if t.statusFilter == "" {
		return ""
	}
	return s.statusHint.Render(fmt.Sprintf(" [%s]", t.statusFilter))
}
