// Package lists subscribes people to listmonk mailing lists.
package lists

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

const subscribersPath = "/api/subscribers"

var (
	ErrInvalidList = errors.New("invalid mailing list id")
	ErrRequest     = errors.New("could not reach listmonk")
	ErrListmonk    = errors.New("listmonk rejected the subscriber")
)

type Subscriber struct {
	Name  string
	Email string
}

type createSubscriber struct {
	Email                   string  `json:"email"`
	Name                    string  `json:"name"`
	Status                  string  `json:"status"`
	Lists                   []int   `json:"lists"`
	Attribs                 *string `json:"attribs"`
	PreconfirmSubscriptions bool    `json:"preconfirm_subscriptions"`
}

type Config struct {
	URL          string
	User         string
	PasswordFile string
	Lists        []int
}

type MailingLists struct {
	client   *http.Client
	url      string
	user     string
	password string
	lists    []int
}

// New reads the listmonk password from cfg.PasswordFile.
func New(client *http.Client, cfg Config) (*MailingLists, error) {
	password, err := os.ReadFile(cfg.PasswordFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read listmonk password: %w", err)
	}

	return &MailingLists{
		client:   client,
		url:      strings.TrimRight(cfg.URL, "/") + subscribersPath,
		user:     cfg.User,
		password: strings.TrimRight(string(password), "\r\n"),
		lists:    cfg.Lists,
	}, nil
}

// Subscribe adds s to list. Subscriptions are preconfirmed.
func (m *MailingLists) Subscribe(ctx context.Context, list int, s Subscriber) error {
	if !slices.Contains(m.lists, list) {
		return fmt.Errorf("%w: %d", ErrInvalidList, list)
	}

	payload, err := json.Marshal(createSubscriber{
		Email:                   s.Email,
		Name:                    s.Name,
		Status:                  "enabled",
		Lists:                   []int{list},
		PreconfirmSubscriptions: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode subscriber: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build listmonk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(m.user, m.password)

	resp, err := m.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", m.url).Msg("Failed to send subscriber to listmonk")
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Int("list", list).Msg("Listmonk did not create subscriber")
		return fmt.Errorf("%w: status %d", ErrListmonk, resp.StatusCode)
	}

	return nil
}
