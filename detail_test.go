package main

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailRefetchesOnEveryShow(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"corporation":{
			"101":{"id":101,"character_name":"Alice","amount":150000000,"status":"pending","payment_date":"2025-08-01"}
		}}]`))
	}))
	defer server.Close()

	detail := &detailModal{title: "Payments — Alice", endpoint: server.URL}
	client := newFeedClient(0)

	for i := 1; i <= 3; i++ {
		cmd := detail.showCmd(client, nil)
		assert.True(t, detail.visible)
		assert.True(t, detail.loading)

		msg := runCmd(t, cmd).(detailLoadedMsg)
		require.True(t, detail.applyLoad(msg))
		assert.False(t, detail.loading)
		require.Len(t, detail.records, 1)
	}
	assert.Equal(t, int32(3), hits.Load(), "every show fetches fresh content")
}

func TestDetailSupersededResponseIsDropped(t *testing.T) {
	detail := &detailModal{endpoint: "http://unused.invalid/"}
	client := newFeedClient(0)

	// two shows back to back; only the second fetch may land
	_ = detail.showCmd(client, nil)
	_ = detail.showCmd(client, nil)
	require.Equal(t, 2, detail.issuedSeq)

	second := detailLoadedMsg{seq: 2, records: []record{{CharacterName: "Second", PaymentDate: "2025-08-02"}}}
	first := detailLoadedMsg{seq: 1, records: []record{{CharacterName: "First", PaymentDate: "2025-08-01"}}}

	assert.True(t, detail.applyLoad(second))
	assert.False(t, detail.applyLoad(first), "stale response must not touch the detail view")
	require.Len(t, detail.records, 1)
	assert.Equal(t, "Second", detail.records[0].CharacterName)
}

func TestDetailLoadErrorShowsRowMessage(t *testing.T) {
	detail := &detailModal{endpoint: "http://unused.invalid/"}
	detail.issuedSeq = 1
	detail.visible = true
	detail.loading = true

	require.True(t, detail.applyLoad(detailLoadedMsg{seq: 1, err: classifyFetchStatus(http.StatusNotFound)}))
	assert.False(t, detail.loading)
	assert.Equal(t, "No data found", detail.errText)
	assert.Empty(t, detail.records)

	_, ok := detail.selectedRecord()
	assert.False(t, ok)
}

func TestDetailSortsPaymentsNewestFirst(t *testing.T) {
	detail := &detailModal{}
	detail.issuedSeq = 1

	require.True(t, detail.applyLoad(detailLoadedMsg{seq: 1, records: []record{
		{CharacterName: "Alice", PaymentDate: "2025-06-01"},
		{CharacterName: "Alice", PaymentDate: "2025-08-01"},
		{CharacterName: "Alice", PaymentDate: "2025-07-01"},
	}}))

	require.Len(t, detail.records, 3)
	assert.Equal(t, "2025-08-01", detail.records[0].PaymentDate)
	assert.Equal(t, "2025-07-01", detail.records[1].PaymentDate)
	assert.Equal(t, "2025-06-01", detail.records[2].PaymentDate)
}

func TestDetailCursorClampedByReload(t *testing.T) {
	detail := &detailModal{}
	detail.issuedSeq = 1
	require.True(t, detail.applyLoad(detailLoadedMsg{seq: 1, records: []record{
		{ID: 1, PaymentDate: "2025-08-01"},
		{ID: 2, PaymentDate: "2025-07-01"},
		{ID: 3, PaymentDate: "2025-06-01"},
	}}))

	detail.moveCursor(1)
	detail.moveCursor(1)
	assert.Equal(t, 2, detail.cursor)
	detail.moveCursor(1)
	assert.Equal(t, 2, detail.cursor, "cursor stops at the last row")

	// the set shrinks under the cursor on the next load
	detail.issuedSeq = 2
	require.True(t, detail.applyLoad(detailLoadedMsg{seq: 2, records: []record{
		{ID: 1, PaymentDate: "2025-08-01"},
	}}))
	assert.Equal(t, 0, detail.cursor)

	rec, ok := detail.selectedRecord()
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.ID)
}
