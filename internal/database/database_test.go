package database

import (
	"testing"

	"github.com/freelancer-ai/analysis-api/internal/config"
)

func TestFromConfigDSN(t *testing.T) {
	cfg := FromConfig(config.DBConfig{
		Host:     "db",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Name:     "analyses",
		SSLMode:  "disable",
	})

	want := "host=db port=5433 user=app password=secret dbname=analyses sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestCloseNil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
