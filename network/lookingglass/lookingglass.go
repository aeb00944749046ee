// Package lookingglass tracks the prefixes announced to the route servers and
// answers whether an address is reachable through the exchange.
package lookingglass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/foundation-api/shared/cache"
	"github.com/dfryer1193/foundation-api/shared/upstream"
)

// ErrNotReady is returned until the first refresh stored a route table.
var ErrNotReady = errors.New("lookingglass: routes not loaded yet")

var families = []string{"v4", "v6"}

type neighborsScheme struct {
	Neighbors []struct {
		ASN int64 `json:"asn"`
	} `json:"neighbors"`
}

type routesScheme struct {
	Pagination struct {
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
	Imported []struct {
		Network string `json:"network"`
	} `json:"imported"`
}

// Updater collects the received routes of every route server neighbor from
// an Alice looking glass.
type Updater struct {
	client  *http.Client
	baseURL string
}

func NewUpdater(client *http.Client, lookingGlassURL string) *Updater {
	return &Updater{
		client:  client,
		baseURL: strings.TrimRight(lookingGlassURL, "/") + "/api/v1/routeservers",
	}
}

func (u *Updater) Update(ctx context.Context) ([]netip.Prefix, error) {
	var neighbors neighborsScheme
	if err := upstream.GetJSON(ctx, u.client, u.baseURL+"/rs01_v4/neighbors", &neighbors); err != nil {
		return nil, fmt.Errorf("failed to fetch route server neighbors: %w", err)
	}

	prefixes := make([]netip.Prefix, 0)
	for _, family := range families {
		for _, neighbor := range neighbors.Neighbors {
			prefixes = append(prefixes, u.neighborRoutes(ctx, family, neighbor.ASN)...)
		}
	}

	log.Info().Int("neighbors", len(neighbors.Neighbors)).Int("prefixes", len(prefixes)).Msg("Updated looking glass routes")
	return prefixes, nil
}

// neighborRoutes pages through the routes received from one neighbor. Pages
// that fail are logged and skipped.
func (u *Updater) neighborRoutes(ctx context.Context, family string, asn int64) []netip.Prefix {
	var prefixes []netip.Prefix
	totalPages := 1
	for page := 0; page < totalPages; page++ {
		url := fmt.Sprintf("%s/rs01_%s/neighbors/AS%d_1/routes/received?pf=%d", u.baseURL, family, asn, page)

		var routes routesScheme
		if err := upstream.GetJSON(ctx, u.client, url, &routes); err != nil {
			if ctx.Err() != nil {
				return prefixes
			}
			log.Error().Err(err).Str("family", family).Int64("asn", asn).Int("page", page).Msg("Failed to fetch received routes")
			continue
		}

		totalPages = routes.Pagination.TotalPages
		for _, route := range routes.Imported {
			prefix, err := netip.ParsePrefix(route.Network)
			if err != nil {
				log.Warn().Err(err).Str("network", route.Network).Int64("asn", asn).Msg("Skipping unparseable prefix")
				continue
			}
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// Contains reports whether any prefix covers addr.
func Contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Service answers from the route table kept current by the refresher.
type Service struct {
	cache *cache.Cache[[]netip.Prefix]
}

func NewService(updater *Updater, opts ...cache.Option) *Service {
	opts = append([]cache.Option{cache.WithName("looking_glass")}, opts...)
	return &Service{cache: cache.New[[]netip.Prefix](updater, opts...)}
}

func (s *Service) Register(r *cache.Refresher) {
	r.Add(s.cache.Name(), s.cache)
}

// Connected reports whether addr is inside a prefix announced at the exchange.
func (s *Service) Connected(addr netip.Addr) (bool, error) {
	prefixes, ok := s.cache.Peek()
	if !ok {
		return false, ErrNotReady
	}
	return Contains(prefixes, addr), nil
}
