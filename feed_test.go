package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDatasetFlattensKeyedCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"corporation":{
			"2":{"character_name":"Bram","status":"active","wallet":"98000","is_faulty":true},
			"1":{"character_name":"Alice","status":"active","wallet":"1234.5","is_faulty":false}
		}}]`))
	}))
	defer server.Close()

	records, err := fetchDataset(server.Client(), server.URL, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	sort.Slice(records, func(i, j int) bool { return records[i].CharacterName < records[j].CharacterName })
	assert.Equal(t, "Alice", records[0].CharacterName)
	assert.Equal(t, flexFloat(1234.5), records[0].Wallet)
	assert.False(t, records[0].IsFaulty)
	assert.True(t, records[1].IsFaulty)
}

func TestFetchDatasetEmptyEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	records, err := fetchDataset(server.Client(), server.URL, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchDatasetClassifiesStatuses(t *testing.T) {
	tests := []struct {
		status  int
		kind    fetchErrorKind
		message string
	}{
		{http.StatusForbidden, fetchErrPermissionDenied, "You have no permission to view this page"},
		{http.StatusNotFound, fetchErrNotFound, "No data found"},
		{http.StatusBadGateway, fetchErrUnknown, "Error loading data"},
	}
	for _, tc := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		records, err := fetchDataset(server.Client(), server.URL, nil)
		server.Close()

		assert.Nil(t, records)
		var ferr *fetchError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, tc.kind, ferr.kind)
		assert.Equal(t, tc.message, ferr.rowMessage())
	}
}

func TestFetchDatasetSendsHeader(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Cookie", "sessionid=abc")
	_, err := fetchDataset(server.Client(), server.URL, header)
	require.NoError(t, err)
	assert.Equal(t, "sessionid=abc", gotCookie)
}

func TestPostFormDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "token", r.PostFormValue("csrfmiddlewaretoken"))
		_, _ = w.Write([]byte(`{"success":true,"message":"done"}`))
	}))
	defer server.Close()

	form := url.Values{}
	form.Set("csrfmiddlewaretoken", "token")
	envelope, err := postForm(server.Client(), server.URL, form, nil)
	require.NoError(t, err)
	assert.True(t, envelope.Success)
	assert.Equal(t, "done", envelope.Message)
}

func TestPostFormBareInternalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	envelope, err := postForm(server.Client(), server.URL, url.Values{}, nil)
	require.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Equal(t, "internal server error", envelope.Message)
}

func TestPostFormFailureKeepsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Payment already handled"}`))
	}))
	defer server.Close()

	envelope, err := postForm(server.Client(), server.URL, url.Values{}, nil)
	require.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Payment already handled", envelope.Message)
}

func TestRecordActionLookup(t *testing.T) {
	rec := record{Actions: []recordAction{
		{Kind: "approve", URL: "/approve/"},
		{Kind: "decline", URL: "/reject/"},
	}}
	act, ok := rec.action("decline")
	require.True(t, ok)
	assert.Equal(t, "/reject/", act.URL)

	_, ok = rec.action("delete")
	assert.False(t, ok)
}

func TestFlexFloatAcceptsStringsAndNumbers(t *testing.T) {
	var rec record
	require.NoError(t, json.Unmarshal([]byte(`{"wallet":"1234.5","amount":99}`), &rec))
	assert.Equal(t, flexFloat(1234.5), rec.Wallet)
	assert.Equal(t, flexFloat(99), rec.Amount)
}
