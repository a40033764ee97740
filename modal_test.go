package main

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approveRequest(url string) actionRequest {
	return actionRequest{
		kind:       "approve",
		url:        url,
		title:      "Approve Payment",
		text:       "Alice — 150.000.000 ISK",
		originView: viewPayments,
	}
}

func declineRequest(url string) actionRequest {
	req := approveRequest(url)
	req.kind = "decline"
	req.title = "Decline Payment"
	return req
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestOpenCopiesTriggerDataIntoModal(t *testing.T) {
	modal := newActionModal()
	modal.open(approveRequest("/approve/"))

	assert.Equal(t, modalOpened, modal.state)
	assert.Equal(t, "Approve Payment", modal.title)
	assert.Equal(t, "Alice — 150.000.000 ISK", modal.text)
	assert.False(t, modal.needsReason)

	modal.open(declineRequest("/reject/"))
	assert.Equal(t, "Decline Payment", modal.title)
	assert.True(t, modal.needsReason)
}

func TestDeclineWithEmptyReasonNeverHitsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	modal := newActionModal()
	modal.open(declineRequest(server.URL))

	cmd := modal.confirm(server.Client(), "token", nil)
	assert.NotNil(t, cmd, "the attention flash timer is still scheduled")
	assert.Equal(t, modalOpened, modal.state, "validation failure returns to Opened")
	assert.True(t, modal.invalid)
	assert.True(t, modal.attention)
	assert.Equal(t, int32(0), hits.Load())
}

func TestAttentionFlashClearsButInvalidMarkerStays(t *testing.T) {
	modal := newActionModal()
	modal.open(declineRequest("/reject/"))
	_ = modal.confirm(newFeedClient(0), "token", nil)

	modal.clearAttention(attentionClearMsg{binding: modal.binding})
	assert.False(t, modal.attention)
	assert.True(t, modal.invalid, "invalid marker stays until corrected")

	// a stale flash timer from a previous binding is ignored
	modal.attention = true
	modal.clearAttention(attentionClearMsg{binding: modal.binding - 1})
	assert.True(t, modal.attention)
}

func TestApproveSubmitsTokenAndSucceeds(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostFormValue("csrfmiddlewaretoken")
		_, _ = w.Write([]byte(`{"success":true,"message":"approved"}`))
	}))
	defer server.Close()

	modal := newActionModal()
	modal.open(approveRequest(server.URL))

	msg := runCmd(t, modal.confirm(server.Client(), "token", nil))
	assert.Equal(t, modalSubmitting, modal.state)

	result, ok := msg.(actionResultMsg)
	require.True(t, ok)
	assert.Equal(t, "token", gotToken)
	assert.True(t, modal.applyResult(result))
	assert.Equal(t, modalSucceeded, modal.state)
}

func TestDeclineSubmitsReason(t *testing.T) {
	var gotReason string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotReason = r.PostFormValue("decline_reason")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	modal := newActionModal()
	modal.open(declineRequest(server.URL))
	modal.reason.SetValue("late payment")

	msg := runCmd(t, modal.confirm(server.Client(), "token", nil))
	result := msg.(actionResultMsg)
	assert.True(t, modal.applyResult(result))
	assert.Equal(t, "late payment", gotReason)
}

func TestFailedSubmissionKeepsModalOpenWithInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	modal := newActionModal()
	modal.open(declineRequest(server.URL))
	modal.reason.SetValue("late payment")

	msg := runCmd(t, modal.confirm(server.Client(), "token", nil))
	result := msg.(actionResultMsg)

	assert.False(t, modal.applyResult(result))
	assert.Equal(t, modalOpened, modal.state, "modal stays open for retry")
	assert.Equal(t, "internal server error", modal.errText)
	assert.Equal(t, "late payment", modal.reason.Value(), "input survives a failed submit")

	modal.dismissError()
	assert.Empty(t, modal.errText)
}

func TestHideClearsTransientStateAndUnbinds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	modal := newActionModal()
	modal.open(declineRequest(server.URL))
	modal.reason.SetValue("late payment")
	modal.errText = "leftover"
	modal.invalid = true

	cmd := modal.confirm(server.Client(), "token", nil)
	modal.hide()

	assert.Equal(t, modalClosed, modal.state)
	assert.Empty(t, modal.reason.Value())
	assert.Empty(t, modal.errText)
	assert.False(t, modal.invalid)
	assert.Nil(t, modal.parent)

	// the in-flight response lands after close and must be a no-op
	msg := runCmd(t, cmd)
	result := msg.(actionResultMsg)
	assert.False(t, modal.applyResult(result))
	assert.Equal(t, modalClosed, modal.state)
}

func TestRepeatedOpensSubmitExactlyOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	modal := newActionModal()
	for i := 0; i < 5; i++ {
		modal.open(approveRequest(server.URL))
		modal.hide()
	}
	modal.open(approveRequest(server.URL))

	msg := runCmd(t, modal.confirm(server.Client(), "token", nil))
	result := msg.(actionResultMsg)
	assert.True(t, modal.applyResult(result))
	assert.Equal(t, int32(1), hits.Load(), "one confirm click, one submission")
}

func TestErrorHintNamesTheDismissKey(t *testing.T) {
	modal := newActionModal()
	modal.open(approveRequest("/approve/"))
	modal.errText = "internal server error"

	rendered := modal.view(newStyles(), 60)
	assert.Contains(t, rendered, "ctrl+x to dismiss")
}

func TestConfirmIsNoopOutsideOpenedState(t *testing.T) {
	modal := newActionModal()
	assert.Nil(t, modal.confirm(newFeedClient(0), "token", nil))

	modal.open(approveRequest("/approve/"))
	modal.state = modalSubmitting
	assert.Nil(t, modal.confirm(newFeedClient(0), "token", nil), "no double submit while one is in flight")
}
