package rest

import (
	"errors"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dfryer1193/foundation-api/api"
	"github.com/dfryer1193/foundation-api/network/lookingglass"
	"github.com/dfryer1193/foundation-api/network/stats"
)

const statsRetryAfter = "5"

func window(c *gin.Context) (stats.Window, bool) {
	w, err := stats.ParseWindow(c.Param("window"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unsupported time window")
		return "", false
	}
	return w, true
}

func statsUnavailable(c *gin.Context, err error) {
	if !errors.Is(err, stats.ErrNotReady) {
		logError(c, err, "Failed to read statistics")
	}
	c.Header("Retry-After", statsRetryAfter)
	abortWithError(c, http.StatusServiceUnavailable, "statistics unavailable")
}

func (h *handlers) GetTraffic(c *gin.Context) {
	w, ok := window(c)
	if !ok {
		return
	}
	series, err := h.Stats.Traffic(c.Request.Context(), w)
	if err != nil {
		statsUnavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *handlers) GetAS112(c *gin.Context) {
	w, ok := window(c)
	if !ok {
		return
	}
	series, err := h.Stats.AS112(c.Request.Context(), w)
	if err != nil {
		statsUnavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *handlers) GetPeers(c *gin.Context) {
	entities, err := h.Peers.Entities(c.Request.Context())
	if err != nil {
		logError(c, err, "Failed to read peers")
		abortWithError(c, http.StatusBadGateway, "peers unavailable")
		return
	}
	c.JSON(http.StatusOK, entities)
}

func (h *handlers) GetBird(c *gin.Context) {
	content, err := h.Bird.Content(c.Request.Context())
	if err != nil {
		logError(c, err, "Failed to read bird page")
		abortWithError(c, http.StatusInternalServerError, "bird page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(content))
}

func (h *handlers) GetConnected(c *gin.Context) {
	addr, ok := clientAddr(c)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "invalid client address")
		return
	}

	connected, err := h.LookingGlass.Connected(addr)
	if err != nil {
		if !errors.Is(err, lookingglass.ErrNotReady) {
			logError(c, err, "Failed to check looking glass")
		}
		abortWithError(c, http.StatusServiceUnavailable, "routes not loaded yet")
		return
	}
	c.JSON(http.StatusOK, api.NetworkInformation{IsConnected: connected})
}

// clientAddr takes the first X-Forwarded-For entry, else the TCP peer.
func clientAddr(c *gin.Context) (netip.Addr, bool) {
	raw := c.RemoteIP()
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		raw = strings.TrimSpace(first)
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}
