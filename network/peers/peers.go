// Package peers merges the exchange's member list with the statically
// configured supporters.
package peers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dfryer1193/foundation-api/content/domain"
	"github.com/dfryer1193/foundation-api/shared/cache"
	"github.com/dfryer1193/foundation-api/shared/upstream"
)

const (
	DefaultTTL = time.Hour

	supportersFile = "supporter.yaml"
	memberExport   = "/api/v4/member-export/ixf/0.6"
	memberTypeIXP  = "ixp"
)

// Supporter is a non-member organisation listed in supporter.yaml.
type Supporter struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	ASN  *int64 `yaml:"asn"`
}

type Supporters struct {
	Supporters      []Supporter `yaml:"supporters"`
	SupportingPeers []int64     `yaml:"supporting_peers"`
}

func LoadSupporters(source domain.Source) (*Supporters, error) {
	content, err := source.ReadFile(supportersFile)
	if err != nil {
		return nil, err
	}

	var s Supporters
	if err := yaml.Unmarshal(content, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", supportersFile, err)
	}
	return &s, nil
}

func (s *Supporters) isSupportingPeer(asn int64) bool {
	for _, peer := range s.SupportingPeers {
		if peer == asn {
			return true
		}
	}
	return false
}

// Euro-IX member export, only the fields used here.
type memberExportScheme struct {
	MemberList []member `json:"member_list"`
}

type member struct {
	ASNum          int64        `json:"asnum"`
	MemberType     string       `json:"member_type"`
	Name           string       `json:"name"`
	URL            string       `json:"url"`
	PeeringPolicy  *string      `json:"peering_policy"`
	ConnectionList []connection `json:"connection_list"`
}

type connection struct {
	IfList []struct {
		IfSpeed uint64 `json:"if_speed"`
	} `json:"if_list"`
	VLanList []struct {
		IPv4 any `json:"ipv4"`
		IPv6 any `json:"ipv6"`
	} `json:"vlan_list"`
}

type ConnectionSpeed struct {
	Speed  uint64 `json:"speed"`
	Amount uint64 `json:"amount"`
}

// Entity is a peer, a supporter or both.
type Entity struct {
	IsPeer        bool              `json:"is_peer"`
	IsSupporter   bool              `json:"is_supporter"`
	DoesV4        bool              `json:"does_v4"`
	DoesV6        bool              `json:"does_v6"`
	ASN           *int64            `json:"asn"`
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	PeeringPolicy *string           `json:"peering_policy"`
	Speed         []ConnectionSpeed `json:"speed"`
}

// Updater fetches the member export and merges it with the supporters.
type Updater struct {
	client     *http.Client
	exportURL  string
	supporters *Supporters
}

func NewUpdater(client *http.Client, ixpManagerURL string, supporters *Supporters) *Updater {
	return &Updater{
		client:     client,
		exportURL:  strings.TrimRight(ixpManagerURL, "/") + memberExport,
		supporters: supporters,
	}
}

func (u *Updater) Update(ctx context.Context) ([]Entity, error) {
	log.Info().Msg("Updating member and supporter list")

	var export memberExportScheme
	if err := upstream.GetJSON(ctx, u.client, u.exportURL, &export); err != nil {
		return nil, err
	}

	entities := make([]Entity, 0, len(export.MemberList)+len(u.supporters.Supporters))
	peerASNs := make(map[int64]struct{}, len(export.MemberList))
	for _, m := range export.MemberList {
		if m.MemberType == memberTypeIXP {
			continue
		}
		peerASNs[m.ASNum] = struct{}{}
		entities = append(entities, u.peerEntity(m))
	}

	for _, s := range u.supporters.Supporters {
		if s.ASN != nil {
			if _, isPeer := peerASNs[*s.ASN]; isPeer {
				continue
			}
		}
		entities = append(entities, Entity{
			IsSupporter: true,
			Name:        s.Name,
			URL:         s.URL,
			Speed:       []ConnectionSpeed{},
		})
	}

	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })

	log.Info().Int("entities", len(entities)).Msg("Found members and supporters")
	return entities, nil
}

func (u *Updater) peerEntity(m member) Entity {
	asn := m.ASNum
	entity := Entity{
		IsPeer:        true,
		IsSupporter:   u.supporters.isSupportingPeer(m.ASNum),
		ASN:           &asn,
		Name:          m.Name,
		URL:           m.URL,
		PeeringPolicy: m.PeeringPolicy,
	}

	speeds := make(map[uint64]uint64)
	for _, c := range m.ConnectionList {
		for _, iface := range c.IfList {
			speeds[iface.IfSpeed]++
		}
		for _, vlan := range c.VLanList {
			entity.DoesV4 = entity.DoesV4 || vlan.IPv4 != nil
			entity.DoesV6 = entity.DoesV6 || vlan.IPv6 != nil
		}
	}

	entity.Speed = make([]ConnectionSpeed, 0, len(speeds))
	for speed, amount := range speeds {
		entity.Speed = append(entity.Speed, ConnectionSpeed{Speed: speed, Amount: amount})
	}
	sort.Slice(entity.Speed, func(i, j int) bool { return entity.Speed[i].Speed < entity.Speed[j].Speed })

	return entity
}

// Service serves the merged list from a pull cache.
type Service struct {
	cache *cache.Cache[[]Entity]
}

func NewService(updater *Updater, opts ...cache.Option) *Service {
	opts = append([]cache.Option{cache.WithName("peers"), cache.WithTTL(DefaultTTL)}, opts...)
	return &Service{cache: cache.New[[]Entity](updater, opts...)}
}

func (s *Service) Entities(ctx context.Context) ([]Entity, error) {
	return s.cache.Get(ctx)
}
