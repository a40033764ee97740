package main

import (
	"encoding/json"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
)

// dashboardInfo is the Manage view's corporation summary.
type dashboardInfo struct {
	ID                      int64     `json:"id"`
	CorporationID           int64     `json:"corporation_id"`
	CorporationName         string    `json:"corporation_name"`
	TaxAmount               flexFloat `json:"tax_amount"`
	TaxPeriod               flexFloat `json:"tax_period"`
	LastUpdateWallet        string    `json:"last_update_wallet"`
	LastUpdateMembers       string    `json:"last_update_members"`
	LastUpdatePayments      string    `json:"last_update_payments"`
	LastUpdatePaymentSystem string    `json:"last_update_payment_system"`
}

type dashboardLoadedMsg struct {
	seq  int
	info dashboardInfo
	err  error
}

type dashboardPanel struct {
	endpoint string
	info     dashboardInfo
	visible  bool
	errText  string

	issuedSeq int
}

func (d *dashboardPanel) reloadCmd(client *http.Client, header http.Header) tea.Cmd {
	d.issuedSeq++
	seq := d.issuedSeq
	endpoint := d.endpoint
	return func() tea.Msg {
		info, err := fetchDashboard(client, endpoint, header)
		return dashboardLoadedMsg{seq: seq, info: info, err: err}
	}
}

func (d *dashboardPanel) applyLoad(msg dashboardLoadedMsg) bool {
	if msg.seq != d.issuedSeq {
		return false
	}
	if msg.err != nil {
		d.errText = fetchRowMessage(msg.err)
		d.visible = true
		return true
	}
	d.errText = ""
	d.info = msg.info
	d.visible = true
	return true
}

// fetchDashboard reads the dashboard envelope. Same keyed-collection
// wire shape as the tables; the collection holds a single entry.
func fetchDashboard(client *http.Client, endpoint string, header http.Header) (dashboardInfo, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return dashboardInfo{}, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return dashboardInfo{}, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return dashboardInfo{}, classifyFetchStatus(resp.StatusCode)
	}

	var envelopes []struct {
		Corporation map[string]dashboardInfo `json:"corporation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return dashboardInfo{}, &fetchError{kind: fetchErrUnknown, cause: err}
	}
	if len(envelopes) == 0 {
		return dashboardInfo{}, &fetchError{kind: fetchErrNotFound, status: http.StatusNotFound}
	}
	for _, info := range envelopes[0].Corporation {
		return info, nil
	}
	return dashboardInfo{}, &fetchError{kind: fetchErrNotFound, status: http.StatusNotFound}
}
