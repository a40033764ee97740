package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// consoleConfig models taxdesk.yaml in the user config dir.
type consoleConfig struct {
	BaseURL       string `yaml:"base_url"`
	CorporationID int64  `yaml:"corporation_id"`
	CSRFToken     string `yaml:"csrf_token"`
	SessionCookie string `yaml:"session_cookie,omitempty"`
	Theme         string `yaml:"theme,omitempty"`
	TimeoutSec    int    `yaml:"timeout_seconds,omitempty"`
}

func loadConsoleConfig() (*consoleConfig, string) {
	configDir := resolveConfigDir()
	path := filepath.Join(configDir, "taxdesk.yaml")
	cfg := &consoleConfig{}
	if err := os.MkdirAll(configDir, 0o755); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, path
}

func saveConsoleConfig(cfg *consoleConfig, path string) error {
	if cfg == nil {
		cfg = &consoleConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnvOverrides(cfg *consoleConfig) {
	if value := strings.TrimSpace(os.Getenv("TAXDESK_BASE_URL")); value != "" {
		cfg.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("TAXDESK_CORPORATION_ID")); value != "" {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.CorporationID = id
		}
	}
	if value := strings.TrimSpace(os.Getenv("TAXDESK_CSRF_TOKEN")); value != "" {
		cfg.CSRFToken = value
	}
	if value := strings.TrimSpace(os.Getenv("TAXDESK_SESSION_COOKIE")); value != "" {
		cfg.SessionCookie = value
	}
}

func (c *consoleConfig) validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required (config file or TAXDESK_BASE_URL)")
	}
	if c.CorporationID <= 0 {
		return fmt.Errorf("corporation_id is required (config file or TAXDESK_CORPORATION_ID)")
	}
	return nil
}

// requestHeader carries the session cookie on every request.
func (c *consoleConfig) requestHeader() http.Header {
	header := http.Header{}
	if c.SessionCookie != "" {
		header.Set("Cookie", c.SessionCookie)
	}
	return header
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taxdesk")
}

// endpoints holds the resolved URL for every remote surface the
// console talks to.
type endpoints struct {
	members        string
	payments       string
	paymentSystem  string
	administration string
	dashboard      string

	approvePayment func(pk int64) string
	declinePayment func(pk int64) string
	userPayments   func(pk int64) string
	updateTax      string
	updatePeriod   string
}

func resolveEndpoints(baseURL string, corporationID int64) endpoints {
	base := strings.TrimRight(baseURL, "/")
	api := fmt.Sprintf("%s/api/corporation/%d/view", base, corporationID)
	corp := fmt.Sprintf("%s/corporation/%d", base, corporationID)
	return endpoints{
		members:        api + "/members/",
		payments:       api + "/payments/",
		paymentSystem:  api + "/paymentsystem/",
		administration: api + "/administration/",
		dashboard:      api + "/dashboard/",

		approvePayment: func(pk int64) string {
			return fmt.Sprintf("%s/payment/%d/approve/", corp, pk)
		},
		declinePayment: func(pk int64) string {
			return fmt.Sprintf("%s/payment/%d/reject/", corp, pk)
		},
		userPayments: func(pk int64) string {
			return fmt.Sprintf("%s/user/%d/payments/", api, pk)
		},
		updateTax:    corp + "/manage/update_tax/",
		updatePeriod: corp + "/manage/update_period/",
	}
}
