package application

import (
	"time"

	"github.com/dfryer1193/foundation-api/content/domain"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

type (
	PostProvider  = Provider[*domain.PostSummary, *domain.Post]
	EventProvider = Provider[*domain.EventSummary, *domain.Event]
)

var (
	NewsKind = Kind[domain.PostMeta, *domain.PostSummary, *domain.Post]{
		Section: "news",
		Long:    domain.NewPost,
		Short:   (*domain.Post).Summary,
	}
	BlogKind = Kind[domain.PostMeta, *domain.PostSummary, *domain.Post]{
		Section: "blog",
		Long:    domain.NewPost,
		Short:   (*domain.Post).Summary,
	}
	EventsKind = Kind[domain.EventMeta, *domain.EventSummary, *domain.Event]{
		Section: "events",
		Long:    domain.NewEvent,
		Short:   (*domain.Event).Summary,
	}
)

// Events adds date based queries to the event collection.
type Events struct {
	*EventProvider
}

func LoadEvents(source domain.Source, renderers *Renderers) (*Events, error) {
	provider, err := LoadProvider(source, EventsKind, renderers)
	if err != nil {
		return nil, err
	}
	return &Events{EventProvider: provider}, nil
}

// Upcoming returns the events in language that have not ended at now.
func (e *Events) Upcoming(language lang.Language, now time.Time) []*domain.EventSummary {
	upcoming := make([]*domain.EventSummary, 0)
	for _, event := range e.ContentByLang(language) {
		if event.Upcoming(now) {
			upcoming = append(upcoming, event)
		}
	}
	return upcoming
}
