package main

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldSavedMsg struct {
	field    string
	seq      int
	newValue string
	envelope writeEnvelope
	err      error
}

// editableField manages one inline-editable scalar: formatted for
// display, raw while editing, written back through its endpoint.
type editableField struct {
	name     string
	label    string
	pk       int64
	endpoint string
	format   fieldFormat

	raw     string
	editing bool
	input   textinput.Model
	errText string

	// reload target invalidated by a successful edit
	dependent viewID

	issuedSeq int
}

func newEditableField(name, label string, format fieldFormat, dependent viewID) *editableField {
	input := textinput.New()
	input.CharLimit = 32
	input.Width = 16
	return &editableField{
		name:      name,
		label:     label,
		format:    format,
		dependent: dependent,
		input:     input,
	}
}

func (f *editableField) bind(pk int64, rawValue, endpoint string) {
	f.pk = pk
	f.raw = rawValue
	f.endpoint = endpoint
}

// display renders the formatted representation, never the raw one.
func (f *editableField) display() string {
	return f.format.display(f.raw)
}

// beginEdit swaps the formatted text for the raw value, so the
// operator edits "30", not "30 days".
func (f *editableField) beginEdit() {
	f.editing = true
	f.errText = ""
	f.input.SetValue(f.raw)
	f.input.CursorEnd()
	f.input.Focus()
}

func (f *editableField) cancelEdit() {
	f.editing = false
	f.input.Blur()
	f.input.Reset()
}

// submitCmd posts the new raw value with the anti-forgery token. The
// displayed value is not touched until the server confirms.
func (f *editableField) submitCmd(client *http.Client, csrfToken string, header http.Header) tea.Cmd {
	value := f.input.Value()
	if _, err := parseRawNumber(value); err != nil {
		f.errText = "enter a plain number"
		return nil
	}
	f.issuedSeq++
	seq := f.issuedSeq
	name := f.name
	endpoint := f.endpoint

	form := url.Values{}
	form.Set("csrfmiddlewaretoken", csrfToken)
	form.Set("pk", strconv.FormatInt(f.pk, 10))
	form.Set("value", value)

	return func() tea.Msg {
		envelope, err := postForm(client, endpoint, form, header)
		return fieldSavedMsg{field: name, seq: seq, newValue: value, envelope: envelope, err: err}
	}
}

// applySave finishes an edit. Success makes the new value
// authoritative and asks for the dependent table's reload; failure
// reverts to the pre-edit display and surfaces the server message.
func (f *editableField) applySave(msg fieldSavedMsg) (reload bool) {
	if msg.field != f.name || msg.seq != f.issuedSeq {
		return false
	}
	if msg.err != nil {
		f.errText = "internal server error"
		f.cancelEdit()
		return false
	}
	if !msg.envelope.Success {
		f.errText = msg.envelope.Message
		if f.errText == "" {
			f.errText = "internal server error"
		}
		f.cancelEdit()
		return false
	}
	f.raw = msg.newValue
	f.errText = ""
	f.cancelEdit()
	return true
}

func (f *editableField) update(msg tea.Msg) tea.Cmd {
	if !f.editing {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}
