package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
	feed "github.com/ikkim/bookcity-backend/internal/websocket"
	"github.com/ikkim/bookcity-backend/pkg/util"
)

// EventsController serves the staff activity feed over WebSocket.
type EventsController struct {
	hub       *feed.Hub
	upgrader  *websocket.Upgrader
	jwtSecret string
}

func NewEventsController(hub *feed.Hub, jwtSecret string, allowedOrigins []string) *EventsController {
	return &EventsController{
		hub:       hub,
		upgrader:  feed.NewUpgrader(allowedOrigins),
		jwtSecret: jwtSecret,
	}
}

// Subscribe upgrades the request and streams events until the peer leaves.
// Browsers cannot set headers on a WebSocket handshake, so the access token
// may also be passed as ?token=.
// GET /api/v1/events/ws
func (ctrl *EventsController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		apperrors.Unauthorized(c, "")
		return
	}

	claims, err := util.ValidateToken(token, ctrl.jwtSecret)
	if err != nil {
		log.Warn("Feed token validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ctrl.hub.Serve(conn, claims.UserID)
}
