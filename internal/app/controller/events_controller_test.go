package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	feed "github.com/ikkim/bookcity-backend/internal/websocket"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventsTest(t *testing.T) (*feed.Hub, *httptest.Server) {
	t.Helper()
	hub := feed.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/events/ws", NewEventsController(hub, testJWTSecret, nil).Subscribe)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, server
}

func TestEventsController_RequiresToken(t *testing.T) {
	_, server := setupEventsTest(t)

	resp, err := http.Get(server.URL + "/events/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/events/ws?token=garbage")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestEventsController_StreamsEvents(t *testing.T) {
	hub, server := setupEventsTest(t)

	token, err := util.GenerateAccessToken(4, "kamala", "staff", testJWTSecret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events/ws?token=" + token.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.ConnectedUsers() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(feed.EventSweepFinished, map[string]int{"generated": 1}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), feed.EventSweepFinished)
}
