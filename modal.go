package main

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalState int

const (
	modalClosed modalState = iota
	modalOpened
	modalValidating
	modalSubmitting
	modalSucceeded
	modalFailed
)

const attentionFlashDuration = 2 * time.Second

// actionRequest carries everything a row's action control knows: the
// target URL, the human-readable title/text, and where the action was
// launched from. parent is the explicit detail-modal reference (nil
// when launched from a background table).
type actionRequest struct {
	kind       string
	url        string
	title      string
	text       string
	originView viewID
	parent     *detailModal
}

type actionResultMsg struct {
	binding  int
	envelope writeEnvelope
	err      error
}

type attentionClearMsg struct {
	binding int
}

// actionModal drives the confirm/validate/submit machine for one
// reusable modal surface. The binding token is bumped on every open
// and every hide; a response carrying a stale token is a no-op, which
// is what keeps reused modal state from cross-contaminating rows.
type actionModal struct {
	state modalState

	kind        string
	title       string
	text        string
	actionURL   string
	needsReason bool
	originView  viewID
	parent      *detailModal

	reason    textarea.Model
	invalid   bool
	attention bool
	errText   string

	binding int
}

func newActionModal() *actionModal {
	area := textarea.New()
	area.Placeholder = "Reason"
	area.SetHeight(3)
	area.CharLimit = 500
	return &actionModal{reason: area}
}

// open transitions Closed → Opened. Opening rebinds: any previous
// submit binding is invalidated first, so repeated opens of the same
// modal element can never stack submissions.
func (m *actionModal) open(req actionRequest) {
	m.clearTransient()
	m.binding++
	m.state = modalOpened
	m.kind = req.kind
	m.title = req.title
	m.text = req.text
	m.actionURL = req.url
	m.originView = req.originView
	m.parent = req.parent
	m.needsReason = req.kind == "decline"
	if m.needsReason {
		m.reason.Focus()
	}
}

// hide releases the surface on any exit path: transient UI state is
// cleared and the submit binding invalidated, making an in-flight
// response for an abandoned attempt a no-op.
func (m *actionModal) hide() {
	m.clearTransient()
	m.binding++
	m.state = modalClosed
	m.parent = nil
	m.actionURL = ""
}

func (m *actionModal) clearTransient() {
	m.reason.Reset()
	m.reason.Blur()
	m.invalid = false
	m.attention = false
	m.errText = ""
}

func (m *actionModal) active() bool {
	return m.state != modalClosed
}

// dismissError removes the appended error block without closing.
func (m *actionModal) dismissError() {
	m.errText = ""
}

// confirm runs Opened → Validating → Submitting. A failed validation
// returns to Opened with the field marked invalid and a transient
// attention flash; no network request is issued.
func (m *actionModal) confirm(client *http.Client, csrfToken string, header http.Header) tea.Cmd {
	if m.state != modalOpened {
		return nil
	}
	m.state = modalValidating

	if m.needsReason && strings.TrimSpace(m.reason.Value()) == "" {
		m.invalid = true
		m.attention = true
		m.state = modalOpened
		binding := m.binding
		return tea.Tick(attentionFlashDuration, func(time.Time) tea.Msg {
			return attentionClearMsg{binding: binding}
		})
	}

	m.invalid = false
	m.state = modalSubmitting

	form := url.Values{}
	form.Set("csrfmiddlewaretoken", csrfToken)
	if m.needsReason {
		form.Set("decline_reason", m.reason.Value())
	}

	binding := m.binding
	endpoint := m.actionURL
	return func() tea.Msg {
		envelope, err := postForm(client, endpoint, form, header)
		return actionResultMsg{binding: binding, envelope: envelope, err: err}
	}
}

// applyResult consumes a submission response. Stale bindings (the
// modal was closed or reopened since) are dropped. On success the
// modal hides; the caller asks the coordinator for the refresh
// target. On failure the modal stays open with the server message
// appended and all input preserved.
func (m *actionModal) applyResult(msg actionResultMsg) (succeeded bool) {
	if msg.binding != m.binding || m.state != modalSubmitting {
		return false
	}
	if msg.err != nil {
		m.state = modalFailed
		m.errText = msg.err.Error()
		m.state = modalOpened
		return false
	}
	if !msg.envelope.Success {
		m.state = modalFailed
		m.errText = msg.envelope.Message
		if m.errText == "" {
			m.errText = "internal server error"
		}
		m.state = modalOpened
		return false
	}
	m.state = modalSucceeded
	return true
}

func (m *actionModal) clearAttention(msg attentionClearMsg) {
	if msg.binding != m.binding {
		return
	}
	m.attention = false
}

func (m *actionModal) update(msg tea.Msg) tea.Cmd {
	if !m.needsReason {
		return nil
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	if m.invalid && strings.TrimSpace(m.reason.Value()) != "" {
		m.invalid = false
	}
	return cmd
}

func (m *actionModal) view(s styles, width int) string {
	var parts []string
	parts = append(parts, s.modalTitle.Render(m.title))
	if m.text != "" {
		parts = append(parts, s.modalText.Render(m.text))
	}
	if m.needsReason {
		parts = append(parts, m.reasonView(s))
	}
	if m.state == modalSubmitting {
		parts = append(parts, s.statusHint.Render("submitting…"))
	}
	if m.errText != "" {
		parts = append(parts, s.alertDanger.Render(m.errText+"  (ctrl+x to dismiss)"))
	}
	parts = append(parts, s.statusHint.Render("enter confirm • esc cancel"))
	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	overlay := s.modalOverlay
	if width > 8 {
		overlay = overlay.Width(width)
	}
	return overlay.Render(body)
}

func (m *actionModal) reasonView(s styles) string {
	field := m.reason.View()
	if m.invalid {
		field = s.fieldInvalid.Render(field)
		message := "A reason is required to decline."
		if m.attention {
			return lipgloss.JoinVertical(lipgloss.Left, field, s.modalErrorFlash.Render(message))
		}
		return lipgloss.JoinVertical(lipgloss.Left, field, s.modalError.Render(message))
	}
	return field
}
