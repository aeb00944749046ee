package lists

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writePassword(t *testing.T, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listmonk-password")
	if err := os.WriteFile(path, []byte(password), 0o600); err != nil {
		t.Fatalf("failed to write password file: %v", err)
	}
	return path
}

func TestMailingLists_Subscribe(t *testing.T) {
	var received map[string]any
	var user, password string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != subscribersPath {
			http.NotFound(w, r)
			return
		}
		user, password, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m, err := New(server.Client(), Config{
		URL:          server.URL,
		User:         "api",
		PasswordFile: writePassword(t, "s3cret\n"),
		Lists:        []int{3, 7},
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if err := m.Subscribe(context.Background(), 7, Subscriber{Name: "Ada", Email: "ada@example.org"}); err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}

	if user != "api" || password != "s3cret" {
		t.Errorf("basic auth = %q/%q, want api/s3cret", user, password)
	}
	if received["email"] != "ada@example.org" || received["name"] != "Ada" || received["status"] != "enabled" {
		t.Errorf("payload = %v", received)
	}
	if received["preconfirm_subscriptions"] != true {
		t.Errorf("preconfirm_subscriptions = %v, want true", received["preconfirm_subscriptions"])
	}
	if attribs, ok := received["attribs"]; !ok || attribs != nil {
		t.Errorf("attribs = %v, want explicit null", attribs)
	}
	lists, ok := received["lists"].([]any)
	if !ok || len(lists) != 1 || lists[0] != float64(7) {
		t.Errorf("lists = %v, want [7]", received["lists"])
	}
}

func TestMailingLists_SubscribeErrors(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate", http.StatusConflict)
	}))
	defer rejecting.Close()

	unreachable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable.Close()

	tests := []struct {
		name     string
		url      string
		list     int
		expected error
	}{
		{name: "Unknown list", url: rejecting.URL, list: 99, expected: ErrInvalidList},
		{name: "Listmonk rejects", url: rejecting.URL, list: 3, expected: ErrListmonk},
		{name: "Listmonk unreachable", url: unreachable.URL, list: 3, expected: ErrRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(http.DefaultClient, Config{
				URL:          tt.url,
				User:         "api",
				PasswordFile: writePassword(t, "pw"),
				Lists:        []int{3},
			})
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}

			err = m.Subscribe(context.Background(), tt.list, Subscriber{Name: "Ada", Email: "ada@example.org"})
			if !errors.Is(err, tt.expected) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestNew_MissingPasswordFile(t *testing.T) {
	_, err := New(http.DefaultClient, Config{PasswordFile: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Error("New() expected error for missing password file, got nil")
	}
}
