package rest

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/foundation-api/api"
	"github.com/dfryer1193/foundation-api/content/application"
	"github.com/dfryer1193/foundation-api/network/lists"
	"github.com/dfryer1193/foundation-api/network/peers"
	"github.com/dfryer1193/foundation-api/network/stats"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

type StatsService interface {
	Traffic(ctx context.Context, w stats.Window) (*stats.TrafficSeries, error)
	AS112(ctx context.Context, w stats.Window) (*stats.AS112Series, error)
}

type PeersService interface {
	Entities(ctx context.Context) ([]peers.Entity, error)
}

type LookingGlassService interface {
	Connected(addr netip.Addr) (bool, error)
}

type BirdService interface {
	Content(ctx context.Context) (string, error)
}

type MailingListService interface {
	Subscribe(ctx context.Context, list int, s lists.Subscriber) error
}

// Dependencies are the services behind the routes. A nil integration leaves
// its routes unregistered.
type Dependencies struct {
	Library      *application.Snapshot[application.Library]
	Stats        StatsService
	Peers        PeersService
	LookingGlass LookingGlassService
	Bird         BirdService
	MailingLists MailingListService
	// Assets serves the static subtrees. Requests matching no route fall
	// through to it.
	Assets http.Handler
	Now    func() time.Time
}

type handlers struct {
	Dependencies
}

func NewApi(router *gin.Engine, deps Dependencies) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handlers{Dependencies: deps}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.Health{Status: "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.postRoutes(router.Group("/news"), func(l *application.Library) *application.PostProvider { return l.News })
	h.postRoutes(router.Group("/blog"), func(l *application.Library) *application.PostProvider { return l.Blog })

	events := router.Group("/events")
	{
		events.GET("/keywords", h.GetEventKeywords)
		events.GET("/:lang/all", h.GetEvents)
		events.GET("/:lang/upcoming", h.GetUpcomingEvents)
		events.GET("/:lang/:slug", h.GetEvent)
	}

	router.GET("/documents/:lang", h.GetDocuments)
	router.GET("/team/:lang", h.GetTeam)
	router.GET("/text-blocks/:lang/:slug", h.GetTextBlock)
	router.GET("/mirrors", h.GetMirrors)

	if deps.Stats != nil {
		statsV1 := router.Group("/stats")
		{
			statsV1.GET("/traffic/:window", h.GetTraffic)
			statsV1.GET("/as112/:window", h.GetAS112)
		}
	}
	if deps.Peers != nil {
		router.GET("/peers", h.GetPeers)
	}
	if deps.Bird != nil {
		router.GET("/bird", h.GetBird)
	}
	if deps.LookingGlass != nil {
		router.GET("/looking-glass/connected", h.GetConnected)
	}
	if deps.MailingLists != nil {
		router.POST("/mailing_lists/:list_id", h.PostSubscriber)
	}

	if deps.Assets != nil {
		assets := gin.WrapH(deps.Assets)
		// Registered explicitly so "/<section>/:lang/:slug" does not swallow them.
		for _, section := range []string{"news", "blog", "events", "text-blocks"} {
			router.GET("/"+section+"/assets/*filepath", assets)
		}
		router.GET("/documents/download/*filepath", assets)
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: message})
}

// language parses the :lang parameter and answers 400 if it is unknown.
func language(c *gin.Context) (lang.Language, bool) {
	l, err := lang.Parse(c.Param("lang"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unsupported language")
		return "", false
	}
	return l, true
}

func logError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
}
