package main

import (
	"fmt"
	"net/http"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type detailLoadedMsg struct {
	seq     int
	records []record
	err     error
}

// detailModal is the parent surface: a per-user payments view fetched
// on every open. Reopening it after a child action naturally reflects
// that action's effect, because show always refetches.
type detailModal struct {
	title    string
	endpoint string

	visible bool
	loading bool
	records []record
	cursor  int
	errText string

	issuedSeq  int
	appliedSeq int
}

// showCmd opens (or reopens) the detail modal and refetches its
// content. Same last-writer-wins discipline as the tables.
func (d *detailModal) showCmd(client *http.Client, header http.Header) tea.Cmd {
	d.visible = true
	d.loading = true
	d.errText = ""
	d.issuedSeq++
	seq := d.issuedSeq
	endpoint := d.endpoint
	return func() tea.Msg {
		records, err := fetchDataset(client, endpoint, header)
		return detailLoadedMsg{seq: seq, records: records, err: err}
	}
}

func (d *detailModal) hide() {
	d.visible = false
	d.loading = false
	d.cursor = 0
	d.errText = ""
}

func (d *detailModal) applyLoad(msg detailLoadedMsg) bool {
	if msg.seq != d.issuedSeq {
		return false
	}
	d.appliedSeq = msg.seq
	d.loading = false
	if msg.err != nil {
		d.records = nil
		d.errText = fetchRowMessage(msg.err)
		return true
	}
	records := append([]record(nil), msg.records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PaymentDate > records[j].PaymentDate
	})
	d.records = records
	if d.cursor >= len(d.records) {
		d.cursor = 0
	}
	return true
}

func (d *detailModal) moveCursor(delta int) {
	next := d.cursor + delta
	if next < 0 || next >= len(d.records) {
		return
	}
	d.cursor = next
}

func (d *detailModal) selectedRecord() (record, bool) {
	if d.cursor < 0 || d.cursor >= len(d.records) {
		return record{}, false
	}
	return d.records[d.cursor], true
}

func (d *detailModal) view(s styles, width int) string {
	var parts []string
	parts = append(parts, s.modalTitle.Render(d.title))
	switch {
	case d.loading:
		parts = append(parts, s.statusHint.Render("loading…"))
	case d.errText != "":
		parts = append(parts, s.alertDanger.Render(d.errText))
	case len(d.records) == 0:
		parts = append(parts, s.statusHint.Render("No payments recorded."))
	default:
		for i, rec := range d.records {
			line := fmt.Sprintf("%s  %s  %s  %s",
				rec.PaymentDate, formatISK(float64(rec.Amount)), rec.Status, rec.Reason)
			if i == d.cursor {
				line = "> " + line
			} else {
				line = "  " + line
			}
			if rec.IsFaulty {
				line = faultyCellStyle.Render(line)
			}
			parts = append(parts, line)
		}
	}
	parts = append(parts, s.statusHint.Render("a approve • d decline • esc close"))
	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	overlay := s.modalOverlay
	if width > 8 {
		overlay = overlay.Width(width)
	}
	return overlay.Render(body)
}
