package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dfryer1193/foundation-api/api"
	"github.com/dfryer1193/foundation-api/network/lists"
)

func (h *handlers) PostSubscriber(c *gin.Context) {
	list, err := strconv.Atoi(c.Param("list_id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid mailing list id")
		return
	}

	subscriber := &api.Subscriber{}
	if err := c.ShouldBindJSON(subscriber); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid subscriber")
		return
	}

	err = h.MailingLists.Subscribe(c.Request.Context(), list, lists.Subscriber{
		Name:  subscriber.Name,
		Email: subscriber.Email,
	})
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, lists.ErrInvalidList):
		abortWithError(c, http.StatusBadRequest, "invalid mailing list id")
	case errors.Is(err, lists.ErrRequest):
		abortWithError(c, http.StatusBadGateway, "mailing list service unreachable")
	default:
		logError(c, err, "Failed to subscribe")
		abortWithError(c, http.StatusInternalServerError, "subscription failed")
	}
}
