package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"clipcast/usecase"
)

func ping(err error) usecase.Pinger {
	return usecase.PingFunc(func(context.Context) error { return err })
}

func TestHealthUsecase_Check(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]usecase.Pinger
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "all up",
			checks:     map[string]usecase.Pinger{"campaignDb": ping(nil), "catalogDb": ping(nil), "redis": ping(nil)},
			wantStatus: usecase.HealthOK,
			wantChecks: map[string]string{"campaignDb": "ok", "catalogDb": "ok", "redis": "ok", "pubsub": "disabled"},
		},
		{
			name:       "cache down degrades",
			checks:     map[string]usecase.Pinger{"campaignDb": ping(nil), "redis": ping(errors.New("refused"))},
			wantStatus: usecase.HealthDegraded,
			wantChecks: map[string]string{"campaignDb": "ok", "redis": "down", "pubsub": "disabled"},
		},
		{
			name:       "campaign db down",
			checks:     map[string]usecase.Pinger{"campaignDb": ping(errors.New("timeout")), "redis": ping(errors.New("refused"))},
			wantStatus: usecase.HealthDown,
			wantChecks: map[string]string{"campaignDb": "down", "redis": "down", "pubsub": "disabled"},
		},
		{
			name:       "missing campaign db",
			checks:     map[string]usecase.Pinger{"campaignDb": nil},
			wantStatus: usecase.HealthDown,
			wantChecks: map[string]string{"campaignDb": "down", "pubsub": "disabled"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewHealthUsecase("campaignDb", tt.checks, map[string]string{"pubsub": "disabled"})
			report := uc.Check(context.Background())
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantChecks, report.Checks)
		})
	}
}
