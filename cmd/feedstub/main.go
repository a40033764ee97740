// feedstub serves the tax program's read and write endpoints with an
// in-memory corporation, so the console can be exercised without the
// real service. Not for production use.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type stubPayment struct {
	ID       int64
	UserPK   int64
	Name     string
	Amount   float64
	Status   string
	Approved string
	Date     string
	Reason   string
	Faulty   bool
}

type stubUser struct {
	PK      int64
	Name    string
	Status  string
	Wallet  float64
	HasPaid bool
	Faulty  bool
	Joined  string
}

type stubState struct {
	mu        sync.Mutex
	taxAmount float64
	taxPeriod float64
	users     []stubUser
	payments  []stubPayment
	failWrite bool
}

func newStubState() *stubState {
	return &stubState{
		taxAmount: 150000000,
		taxPeriod: 30,
		users: []stubUser{
			{PK: 1, Name: "Alice", Status: "active", Wallet: 1234.5, HasPaid: true, Joined: "2024-01-15"},
			{PK: 2, Name: "Bram", Status: "active", Wallet: 98000, HasPaid: false, Faulty: true, Joined: "2023-11-02"},
			{PK: 3, Name: "Ceren", Status: "inactive", Wallet: 41000000, HasPaid: true, Joined: "2024-06-30"},
			{PK: 4, Name: "Dmitri", Status: "active", Wallet: 550.25, HasPaid: false, Joined: "2025-02-09"},
		},
		payments: []stubPayment{
			{ID: 101, UserPK: 1, Name: "Alice", Amount: 150000000, Status: "pending", Approved: "", Date: "2025-08-01"},
			{ID: 102, UserPK: 2, Name: "Bram", Amount: 75000000, Status: "pending", Approved: "", Date: "2025-08-03", Faulty: true},
			{ID: 103, UserPK: 1, Name: "Alice", Amount: 150000000, Status: "approved", Approved: "Ceren", Date: "2025-07-01"},
			{ID: 104, UserPK: 3, Name: "Ceren", Amount: 12000000, Status: "declined", Approved: "Alice", Date: "2025-07-12", Reason: "late payment"},
		},
	}
}

func main() {
	addr := flag.String("addr", ":8642", "listen address")
	failWrite := flag.Bool("fail-writes", false, "answer every write with a 500")
	flag.Parse()

	state := newStubState()
	state.failWrite = *failWrite

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api/corporation/{corporationID}/view", func(r chi.Router) {
		r.Get("/members/", state.handleMembers)
		r.Get("/payments/", state.handlePayments)
		r.Get("/paymentsystem/", state.handlePaymentSystem)
		r.Get("/administration/", state.handlePaymentSystem)
		r.Get("/dashboard/", state.handleDashboard)
		r.Get("/user/{userPK}/payments/", state.handleUserPayments)
	})
	r.Route("/corporation/{corporationID}", func(r chi.Router) {
		r.Post("/payment/{paymentPK}/approve/", state.handleDecide("approved"))
		r.Post("/payment/{paymentPK}/reject/", state.handleDecide("declined"))
		r.Post("/manage/update_tax/", state.handleUpdate(&state.taxAmount))
		r.Post("/manage/update_period/", state.handleUpdate(&state.taxPeriod))
	})

	log.Printf("feedstub listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, r))
}

func keyedEnvelope(records map[string]any) []map[string]any {
	return []map[string]any{{"corporation": records}}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *stubState) handleMembers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := map[string]any{}
	for _, user := range s.users {
		records[strconv.FormatInt(user.PK, 10)] = map[string]any{
			"id":             user.PK,
			"character_id":   user.PK,
			"character_name": user.Name,
			"status":         user.Status,
			"joined":         user.Joined,
			"is_faulty":      user.Faulty,
		}
	}
	writeJSON(w, http.StatusOK, keyedEnvelope(records))
}

func (s *stubState) handlePaymentSystem(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := map[string]any{}
	for _, user := range s.users {
		records[strconv.FormatInt(user.PK, 10)] = map[string]any{
			"id":             user.PK,
			"character_id":   user.PK,
			"character_name": user.Name,
			"status":         user.Status,
			"wallet":         fmt.Sprintf("%g", user.Wallet),
			"has_paid":       user.HasPaid,
			"is_faulty":      user.Faulty,
		}
	}
	writeJSON(w, http.StatusOK, keyedEnvelope(records))
}

func (s *stubState) handlePayments(w http.ResponseWriter, r *http.Request) {
	corporationID := chi.URLParam(r, "corporationID")
	s.mu.Lock()
	defer s.mu.Unlock()
	records := map[string]any{}
	for _, payment := range s.payments {
		records[strconv.FormatInt(payment.ID, 10)] = s.paymentRecord(corporationID, payment)
	}
	writeJSON(w, http.StatusOK, keyedEnvelope(records))
}

func (s *stubState) handleUserPayments(w http.ResponseWriter, r *http.Request) {
	corporationID := chi.URLParam(r, "corporationID")
	userPK, _ := strconv.ParseInt(chi.URLParam(r, "userPK"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	records := map[string]any{}
	for _, payment := range s.payments {
		if payment.UserPK != userPK {
			continue
		}
		records[strconv.FormatInt(payment.ID, 10)] = s.paymentRecord(corporationID, payment)
	}
	if len(records) == 0 {
		http.Error(w, "No payments found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, keyedEnvelope(records))
}

func (s *stubState) paymentRecord(corporationID string, payment stubPayment) map[string]any {
	base := fmt.Sprintf("/corporation/%s/payment/%d", corporationID, payment.ID)
	var actions []map[string]any
	if payment.Status == "pending" {
		actions = []map[string]any{
			{
				"kind":  "approve",
				"url":   base + "/approve/",
				"title": "Approve Payment",
				"text":  fmt.Sprintf("Approve %s's payment of %.0f ISK?", payment.Name, payment.Amount),
			},
			{
				"kind":  "decline",
				"url":   base + "/reject/",
				"title": "Decline Payment",
				"text":  fmt.Sprintf("Decline %s's payment of %.0f ISK?", payment.Name, payment.Amount),
			},
		}
	}
	return map[string]any{
		"id":             payment.ID,
		"character_name": payment.Name,
		"amount":         payment.Amount,
		"status":         payment.Status,
		"approved":       payment.Approved,
		"payment_date":   payment.Date,
		"reason":         payment.Reason,
		"is_faulty":      payment.Faulty,
		"actions":        actions,
	}
}

func (s *stubState) handleDashboard(w http.ResponseWriter, r *http.Request) {
	corporationID, _ := strconv.ParseInt(chi.URLParam(r, "corporationID"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format("2006-01-02 15:04")
	records := map[string]any{
		strconv.FormatInt(corporationID, 10): map[string]any{
			"id":                         corporationID,
			"corporation_id":             corporationID,
			"corporation_name":           "Brave Little Holdings",
			"tax_amount":                 s.taxAmount,
			"tax_period":                 s.taxPeriod,
			"last_update_wallet":         now,
			"last_update_members":        now,
			"last_update_payments":       now,
			"last_update_payment_system": now,
		},
	}
	writeJSON(w, http.StatusOK, keyedEnvelope(records))
}

func (s *stubState) handleDecide(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failWrite {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostFormValue("csrfmiddlewaretoken") == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "CSRF token missing"})
			return
		}
		if status == "declined" && strings.TrimSpace(r.PostFormValue("decline_reason")) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "A reason is required"})
			return
		}
		paymentPK, _ := strconv.ParseInt(chi.URLParam(r, "paymentPK"), 10, 64)

		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.payments {
			if s.payments[i].ID != paymentPK {
				continue
			}
			if s.payments[i].Status != "pending" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Payment already handled"})
				return
			}
			s.payments[i].Status = status
			s.payments[i].Reason = r.PostFormValue("decline_reason")
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": fmt.Sprintf("Payment %d %s", paymentPK, status),
			})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Payment not found"})
	}
}

func (s *stubState) handleUpdate(target *float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failWrite {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostFormValue("csrfmiddlewaretoken") == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "CSRF token missing"})
			return
		}
		value, err := strconv.ParseFloat(r.PostFormValue("value"), 64)
		if err != nil || value < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid value"})
			return
		}
		s.mu.Lock()
		*target = value
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("Updated to %g", value)})
	}
}
