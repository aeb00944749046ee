package domain

import "time"

// EventMeta is the front matter of an event.
type EventMeta struct {
	Title       string    `yaml:"title"`
	StartTime   Timestamp `yaml:"start_time"`
	EndTime     Timestamp `yaml:"end_time"`
	Location    string    `yaml:"location"`
	Description string    `yaml:"description"`
	Keywords    []string  `yaml:"keywords"`
	Image       *string   `yaml:"image"`
	Link        *string   `yaml:"link"`
}

type EventSummary struct {
	Header
	Title       string    `json:"title"`
	StartTime   Timestamp `json:"start_time"`
	EndTime     Timestamp `json:"end_time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	Image       *string   `json:"image"`
}

func (e *EventSummary) Tags() []string { return e.Keywords }

// Upcoming reports whether the event has not ended at now.
func (e *EventSummary) Upcoming(now time.Time) bool {
	return e.EndTime.After(now)
}

type Event struct {
	EventSummary
	Link *string `json:"link"`
	Body string  `json:"body"`
}

func NewEvent(h Header, meta EventMeta, body string) *Event {
	return &Event{
		EventSummary: EventSummary{
			Header:      h,
			Title:       meta.Title,
			StartTime:   meta.StartTime,
			EndTime:     meta.EndTime,
			Location:    meta.Location,
			Description: meta.Description,
			Keywords:    meta.Keywords,
			Image:       meta.Image,
		},
		Link: meta.Link,
		Body: body,
	}
}

func (e *Event) Summary() *EventSummary {
	s := e.EventSummary
	return &s
}
