package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dfryer1193/foundation-api/content/application"
)

const notFound = "not found"

type postSelector func(*application.Library) *application.PostProvider

func (h *handlers) postRoutes(group *gin.RouterGroup, posts postSelector) {
	group.GET("/keywords", func(c *gin.Context) {
		c.JSON(http.StatusOK, posts(h.Library.Load()).Keywords())
	})
	group.GET("/:lang", func(c *gin.Context) { h.listPosts(c, posts) })
	group.GET("/:lang/:slug", func(c *gin.Context) { h.findPost(c, posts) })
}

// listPosts answers with the newest first summaries of one language, or with
// a keyword search when ?keywords=a,b is given.
func (h *handlers) listPosts(c *gin.Context, posts postSelector) {
	l, ok := language(c)
	if !ok {
		return
	}
	provider := posts(h.Library.Load())

	if query, ok := c.GetQuery("keywords"); ok {
		c.JSON(http.StatusOK, provider.SearchByKeywords(l, splitKeywords(query)))
		return
	}
	c.JSON(http.StatusOK, provider.ContentByLang(l))
}

func (h *handlers) findPost(c *gin.Context, posts postSelector) {
	l, ok := language(c)
	if !ok {
		return
	}
	post, ok := posts(h.Library.Load()).ContentBySlug(l, c.Param("slug"))
	if !ok {
		abortWithError(c, http.StatusNotFound, notFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

func splitKeywords(query string) []string {
	keywords := make([]string, 0)
	for _, k := range strings.Split(query, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func (h *handlers) GetEventKeywords(c *gin.Context) {
	c.JSON(http.StatusOK, h.Library.Load().Events.Keywords())
}

func (h *handlers) GetEvents(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Library.Load().Events.ContentByLang(l))
}

func (h *handlers) GetUpcomingEvents(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Library.Load().Events.Upcoming(l, h.Now()))
}

func (h *handlers) GetEvent(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	event, ok := h.Library.Load().Events.ContentBySlug(l, c.Param("slug"))
	if !ok {
		abortWithError(c, http.StatusNotFound, notFound)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *handlers) GetDocuments(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Library.Load().Documents.ForLang(l))
}

func (h *handlers) GetTeam(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Library.Load().Team.Members(l))
}

func (h *handlers) GetTextBlock(c *gin.Context) {
	l, ok := language(c)
	if !ok {
		return
	}
	block, ok := h.Library.Load().TextBlocks.Find(l, c.Param("slug"))
	if !ok {
		abortWithError(c, http.StatusNotFound, notFound)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (h *handlers) GetMirrors(c *gin.Context) {
	c.JSON(http.StatusOK, h.Library.Load().Mirrors.All())
}
