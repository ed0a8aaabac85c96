package models

import (
	"testing"
	"time"
)

func validConfig() *AlertConfig {
	cfg := DefaultAlertConfig("project-1", "user-1")
	cfg.ID = "cfg-1"
	return cfg
}

func TestAlertConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AlertConfig)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *AlertConfig) {},
		},
		{
			name:    "missing project id",
			mutate:  func(c *AlertConfig) { c.ProjectID = "" },
			wantErr: true,
		},
		{
			name:    "missing user id",
			mutate:  func(c *AlertConfig) { c.UserID = "" },
			wantErr: true,
		},
		{
			name:    "zero low threshold",
			mutate:  func(c *AlertConfig) { c.ThresholdLow = 0 },
			wantErr: true,
		},
		{
			name: "equal thresholds",
			mutate: func(c *AlertConfig) {
				c.ThresholdMedium = c.ThresholdHigh
			},
			wantErr: true,
		},
		{
			name: "descending thresholds",
			mutate: func(c *AlertConfig) {
				c.ThresholdLow = 40
				c.ThresholdMedium = 30
				c.ThresholdHigh = 20
				c.ThresholdCritical = 10
			},
			wantErr: true,
		},
		{
			name: "webhook enabled without URL",
			mutate: func(c *AlertConfig) {
				c.NotifyWebhook = true
			},
			wantErr: true,
		},
		{
			name: "webhook with malformed URL",
			mutate: func(c *AlertConfig) {
				c.NotifyWebhook = true
				c.WebhookURL = "not a url"
			},
			wantErr: true,
		},
		{
			name: "webhook with non-http scheme",
			mutate: func(c *AlertConfig) {
				c.NotifyWebhook = true
				c.WebhookURL = "ftp://example.com/hook"
			},
			wantErr: true,
		},
		{
			name: "webhook with valid URL",
			mutate: func(c *AlertConfig) {
				c.NotifyWebhook = true
				c.WebhookURL = "https://example.com/hook"
			},
		},
		{
			name: "webhook URL without toggle is ignored",
			mutate: func(c *AlertConfig) {
				c.WebhookURL = "not a url"
			},
		},
		{
			name:    "negative check interval",
			mutate:  func(c *AlertConfig) { c.CheckInterval = -time.Hour },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeverityFor(t *testing.T) {
	cfg := validConfig()
	cfg.ThresholdLow = 10
	cfg.ThresholdMedium = 15
	cfg.ThresholdHigh = 25
	cfg.ThresholdCritical = 40

	tests := []struct {
		pct      float64
		want     Severity
		wantHit  bool
	}{
		{pct: 5, wantHit: false},
		{pct: 9.99, wantHit: false},
		{pct: 10, want: SeverityLow, wantHit: true},
		{pct: 14.99, want: SeverityLow, wantHit: true},
		{pct: 15, want: SeverityMedium, wantHit: true},
		{pct: 20, want: SeverityMedium, wantHit: true},
		{pct: 25, want: SeverityHigh, wantHit: true},
		{pct: 39.99, want: SeverityHigh, wantHit: true},
		{pct: 40, want: SeverityCritical, wantHit: true},
		{pct: 250, want: SeverityCritical, wantHit: true},
	}

	for _, tt := range tests {
		got, hit := cfg.SeverityFor(tt.pct)
		if hit != tt.wantHit {
			t.Errorf("SeverityFor(%v) hit = %v, want %v", tt.pct, hit, tt.wantHit)
			continue
		}
		if hit && got != tt.want {
			t.Errorf("SeverityFor(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestAlertStatusTerminal(t *testing.T) {
	if AlertStatusActive.Terminal() {
		t.Error("ACTIVE must not be terminal")
	}
	if !AlertStatusResolved.Terminal() {
		t.Error("RESOLVED must be terminal")
	}
	if !AlertStatusIgnored.Terminal() {
		t.Error("IGNORED must be terminal")
	}
}
