package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type fetchErrorKind int

const (
	fetchErrUnknown fetchErrorKind = iota
	fetchErrPermissionDenied
	fetchErrNotFound
)

type fetchError struct {
	kind   fetchErrorKind
	status int
	cause  error
}

func (e *fetchError) Error() string {
	switch e.kind {
	case fetchErrPermissionDenied:
		return fmt.Sprintf("fetch: permission denied (status %d)", e.status)
	case fetchErrNotFound:
		return fmt.Sprintf("fetch: not found (status %d)", e.status)
	default:
		if e.cause != nil {
			return fmt.Sprintf("fetch: %v", e.cause)
		}
		return fmt.Sprintf("fetch: unexpected status %d", e.status)
	}
}

func (e *fetchError) Unwrap() error { return e.cause }

// rowMessage is what the synthetic table row shows in place of data.
func (e *fetchError) rowMessage() string {
	switch e.kind {
	case fetchErrPermissionDenied:
		return "You have no permission to view this page"
	case fetchErrNotFound:
		return "No data found"
	default:
		return "Error loading data"
	}
}

func classifyFetchStatus(status int) *fetchError {
	switch status {
	case http.StatusForbidden:
		return &fetchError{kind: fetchErrPermissionDenied, status: status}
	case http.StatusNotFound:
		return &fetchError{kind: fetchErrNotFound, status: status}
	default:
		return &fetchError{kind: fetchErrUnknown, status: status}
	}
}

// flexFloat tolerates numeric fields arriving as JSON numbers or as
// quoted strings ("1234.5"), which the remote service mixes freely.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*f = 0
		return nil
	}
	trimmed = strings.Trim(trimmed, `"`)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("numeric field %q: %w", trimmed, err)
	}
	*f = flexFloat(value)
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch strings.ToLower(strings.Trim(trimmed, `"`)) {
	case "true", "1", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

type recordAction struct {
	Kind  string `json:"kind"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// record is one row as delivered by a read endpoint. The shape varies
// per view; absent fields stay at their zero value.
type record struct {
	ID            int64          `json:"id"`
	CharacterID   int64          `json:"character_id"`
	CharacterName string         `json:"character_name"`
	Status        string         `json:"status"`
	Joined        string         `json:"joined"`
	Wallet        flexFloat      `json:"wallet"`
	HasPaid       flexBool       `json:"has_paid"`
	IsFaulty      bool           `json:"is_faulty"`
	Amount        flexFloat      `json:"amount"`
	Approved      string         `json:"approved"`
	PaymentDate   string         `json:"payment_date"`
	Reason        string         `json:"reason"`
	System        string         `json:"system"`
	Actions       []recordAction `json:"actions"`
}

func (r record) action(kind string) (recordAction, bool) {
	for _, action := range r.Actions {
		if action.Kind == kind {
			return action, true
		}
	}
	return recordAction{}, false
}

type datasetEnvelope struct {
	Corporation map[string]record `json:"corporation"`
}

func newFeedClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// fetchDataset GETs a read endpoint and flattens the keyed collection
// into records. Iteration order of the mapping is irrelevant; the
// table imposes the visual order.
func fetchDataset(client *http.Client, endpoint string, header http.Header) ([]record, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyFetchStatus(resp.StatusCode)
	}

	var envelopes []datasetEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return nil, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	if len(envelopes) == 0 {
		return nil, nil
	}
	records := make([]record, 0, len(envelopes[0].Corporation))
	for _, rec := range envelopes[0].Corporation {
		records = append(records, rec)
	}
	return records, nil
}

// writeEnvelope is the tagged success/failure variant every write
// endpoint answers with.
type writeEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// postForm submits a form-encoded write request and decodes the
// envelope. Non-2xx bodies are still expected to carry a message; a
// bare 500 maps to a generic one.
func postForm(client *http.Client, endpoint string, form url.Values, header http.Header) (writeEnvelope, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return writeEnvelope{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return writeEnvelope{}, err
	}
	defer resp.Body.Close()

	var envelope writeEnvelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && decodeErr == nil {
		return envelope, nil
	}
	envelope.Success = false
	if envelope.Message == "" {
		if resp.StatusCode == http.StatusInternalServerError {
			envelope.Message = "internal server error"
		} else {
			envelope.Message = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
		}
	}
	return envelope, nil
}
