package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditableFieldDisplaysFormattedValue(t *testing.T) {
	field := newEditableField("tax_period", "Tax Period", daysFormat, viewPaymentSystem)
	field.bind(7, "30", "/update_period/")

	assert.Equal(t, "30 days", field.display())
}

func TestBeginEditShowsRawValue(t *testing.T) {
	field := newEditableField("tax_amount", "Tax Amount", iskFormat, viewPaymentSystem)
	field.bind(7, "150000000", "/update_tax/")

	assert.Equal(t, "150.000.000 ISK", field.display())

	field.beginEdit()
	assert.True(t, field.editing)
	assert.Equal(t, "150000000", field.input.Value(), "the operator edits the raw number, not the formatted one")
}

func TestSubmitRejectsNonNumericLocally(t *testing.T) {
	field := newEditableField("tax_amount", "Tax Amount", iskFormat, viewPaymentSystem)
	field.bind(7, "100", "/update_tax/")
	field.beginEdit()
	field.input.SetValue("ten million")

	cmd := field.submitCmd(newFeedClient(0), "token", nil)
	assert.Nil(t, cmd, "invalid input never reaches the network")
	assert.Equal(t, "enter a plain number", field.errText)
}

func TestSubmitPostsPKValueAndToken(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		_, _ = w.Write([]byte(`{"success":true,"message":"saved"}`))
	}))
	defer server.Close()

	field := newEditableField("tax_amount", "Tax Amount", iskFormat, viewPaymentSystem)
	field.bind(7, "100", server.URL)
	field.beginEdit()
	field.input.SetValue("2500000")

	msg := runCmd(t, field.submitCmd(server.Client(), "token", nil))
	saved, ok := msg.(fieldSavedMsg)
	require.True(t, ok)

	assert.Equal(t, "token", got.Get("csrfmiddlewaretoken"))
	assert.Equal(t, "7", got.Get("pk"))
	assert.Equal(t, "2500000", got.Get("value"))

	reload := field.applySave(saved)
	assert.True(t, reload, "a saved edit invalidates the dependent table")
	assert.Equal(t, "2.500.000 ISK", field.display())
	assert.False(t, field.editing)
}

func TestFailedSaveRevertsDisplay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Permission Denied"}`))
	}))
	defer server.Close()

	field := newEditableField("tax_period", "Tax Period", daysFormat, viewPaymentSystem)
	field.bind(7, "30", server.URL)
	field.beginEdit()
	field.input.SetValue("45")

	msg := runCmd(t, field.submitCmd(server.Client(), "token", nil))
	reload := field.applySave(msg.(fieldSavedMsg))

	assert.False(t, reload)
	assert.Equal(t, "30 days", field.display(), "failure leaves the confirmed value in place")
	assert.Equal(t, "Permission Denied", field.errText)
}

func TestBareErrorSaveShowsGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	field := newEditableField("tax_period", "Tax Period", daysFormat, viewPaymentSystem)
	field.bind(7, "30", server.URL)
	field.beginEdit()
	field.input.SetValue("45")

	msg := runCmd(t, field.submitCmd(server.Client(), "token", nil))
	_ = field.applySave(msg.(fieldSavedMsg))

	assert.Equal(t, "internal server error", field.errText)
	assert.Equal(t, "30 days", field.display())
}

func TestStaleSaveResponseIsDropped(t *testing.T) {
	field := newEditableField("tax_amount", "Tax Amount", iskFormat, viewPaymentSystem)
	field.bind(7, "100", "/update_tax/")
	field.issuedSeq = 2

	stale := fieldSavedMsg{field: "tax_amount", seq: 1, newValue: "999", envelope: writeEnvelope{Success: true}}
	assert.False(t, field.applySave(stale))
	assert.Equal(t, "100", field.raw)

	other := fieldSavedMsg{field: "tax_period", seq: 2, newValue: "999", envelope: writeEnvelope{Success: true}}
	assert.False(t, field.applySave(other), "a response for another field is ignored")
}
