package lookingglass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/dfryer1193/foundation-api/shared/cache"
	"github.com/dfryer1193/foundation-api/shared/upstream"
)

// aliceHandler serves two neighbors. AS64500 has two pages of IPv4 routes and
// one IPv6 page; the second IPv4 page of AS64501 fails.
func aliceHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]string{
		"/api/v1/routeservers/rs01_v4/neighbors/AS64500_1/routes/received?pf=0": `{"pagination":{"total_pages":2},"imported":[{"network":"192.0.2.0/24"}]}`,
		"/api/v1/routeservers/rs01_v4/neighbors/AS64500_1/routes/received?pf=1": `{"pagination":{"total_pages":2},"imported":[{"network":"198.51.100.0/24"},{"network":"not-a-prefix"}]}`,
		"/api/v1/routeservers/rs01_v6/neighbors/AS64500_1/routes/received?pf=0": `{"pagination":{"total_pages":1},"imported":[{"network":"2001:db8::/32"}]}`,
		"/api/v1/routeservers/rs01_v4/neighbors/AS64501_1/routes/received?pf=0": `{"pagination":{"total_pages":3},"imported":[{"network":"203.0.113.0/25"}]}`,
		"/api/v1/routeservers/rs01_v4/neighbors/AS64501_1/routes/received?pf=2": `{"pagination":{"total_pages":3},"imported":[{"network":"203.0.113.128/25"}]}`,
		"/api/v1/routeservers/rs01_v6/neighbors/AS64501_1/routes/received?pf=0": `{"pagination":{"total_pages":1},"imported":[]}`,
	}

	if r.URL.Path == "/api/v1/routeservers/rs01_v4/neighbors" {
		fmt.Fprint(w, `{"neighbors":[{"asn":64500},{"asn":64501}]}`)
		return
	}
	body, ok := routes[r.URL.RequestURI()]
	if !ok {
		http.Error(w, "broken", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, body)
}

func newTestUpdater(t *testing.T, handler http.HandlerFunc) *Updater {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewUpdater(upstream.NewHTTPClient(""), server.URL)
}

func TestUpdater_Update(t *testing.T) {
	prefixes, err := newTestUpdater(t, aliceHandler).Update(context.Background())
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}

	want := []string{"192.0.2.0/24", "198.51.100.0/24", "203.0.113.0/25", "203.0.113.128/25", "2001:db8::/32"}
	if len(prefixes) != len(want) {
		t.Fatalf("Update() = %v, want %v", prefixes, want)
	}
	for i, p := range want {
		if prefixes[i].String() != p {
			t.Errorf("prefixes[%d] = %s, want %s", i, prefixes[i], p)
		}
	}
}

func TestUpdater_NeighborsFailure(t *testing.T) {
	updater := newTestUpdater(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := updater.Update(context.Background())
	var httpErr *upstream.HTTPError
	if !errors.As(err, &httpErr) {
		t.Errorf("Update() error = %v, want *upstream.HTTPError", err)
	}
}

func TestContains(t *testing.T) {
	prefixes := []netip.Prefix{
		netip.MustParsePrefix("192.0.2.0/24"),
		netip.MustParsePrefix("2001:db8::/32"),
	}

	tests := []struct {
		addr     string
		expected bool
	}{
		{addr: "192.0.2.17", expected: true},
		{addr: "192.0.3.1", expected: false},
		{addr: "2001:db8:1::1", expected: true},
		{addr: "2001:db9::1", expected: false},
		{addr: "::ffff:192.0.2.1", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := Contains(prefixes, netip.MustParseAddr(tt.addr)); got != tt.expected {
				t.Errorf("Contains(%s) = %v, want %v", tt.addr, got, tt.expected)
			}
		})
	}

	if Contains(nil, netip.MustParseAddr("192.0.2.1")) {
		t.Error("Contains(nil) = true, want false")
	}
}

func TestService_Connected(t *testing.T) {
	service := NewService(newTestUpdater(t, aliceHandler))

	if _, err := service.Connected(netip.MustParseAddr("192.0.2.1")); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Connected() before refresh error = %v, want ErrNotReady", err)
	}

	refresher := cache.NewRefresher(0, 0)
	service.Register(refresher)
	if refresher.Len() != 1 {
		t.Errorf("Register() added %d caches, want 1", refresher.Len())
	}

	if err := service.cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}

	connected, err := service.Connected(netip.MustParseAddr("198.51.100.7"))
	if err != nil || !connected {
		t.Errorf("Connected(198.51.100.7) = %v, %v, want true", connected, err)
	}
	connected, err = service.Connected(netip.MustParseAddr("10.0.0.1"))
	if err != nil || connected {
		t.Errorf("Connected(10.0.0.1) = %v, %v, want false", connected, err)
	}
}
