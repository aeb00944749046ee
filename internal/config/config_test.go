package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.ContentDir != "content" {
		t.Errorf("ContentDir = %q, want %q", cfg.ContentDir, "content")
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, 5*time.Minute)
	}
	if cfg.PrometheusURL != "" || cfg.ListmonkURL != "" {
		t.Errorf("integrations enabled by default: %+v", cfg)
	}
}

func TestLoad_EnvironmentAndFlags(t *testing.T) {
	t.Setenv("FOUNDATION_LISTEN_ADDR", ":9000")
	t.Setenv("FOUNDATION_PUSH_STATS", "true")
	t.Setenv("FOUNDATION_LISTMONK_LISTS", "3, 7")
	t.Setenv("FOUNDATION_REFRESH_INTERVAL", "30s")

	cfg, err := Load([]string{"-listen", ":9100", "-content-dir", "/srv/content"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ListenAddr != ":9100" {
		t.Errorf("ListenAddr = %q, flag should win over environment", cfg.ListenAddr)
	}
	if cfg.ContentDir != "/srv/content" {
		t.Errorf("ContentDir = %q, want %q", cfg.ContentDir, "/srv/content")
	}
	if !cfg.PushStats {
		t.Error("PushStats = false, want true from environment")
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if !reflect.DeepEqual(cfg.ListmonkLists, []int{3, 7}) {
		t.Errorf("ListmonkLists = %v, want [3 7]", cfg.ListmonkLists)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "Unknown flag", args: []string{"-nope"}},
		{name: "Invalid list id", args: []string{"-listmonk-lists", "3,x"}},
		{name: "Empty content dir", args: []string{"-content-dir", ""}},
		{name: "Listmonk without password", args: []string{"-listmonk-url", "http://listmonk"}},
		{name: "Zero refresh interval", args: []string{"-refresh-interval", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Errorf("Load(%q) expected error, got nil", tt.args)
			}
		})
	}
}
