package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request. A client may join a room at connect time
// with ?room= or ?levelType=&levelValue=.
func (m *Manager) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.log.WithError(err).Warn("[ws] upgrade failed")
		return
	}

	client := newClient(m, conn, uuid.NewString())
	if !m.add(client) {
		conn.Close()
		return
	}

	initial := inbound{
		Type:       "join",
		Room:       c.Query("room"),
		LevelType:  c.Query("levelType"),
		LevelValue: c.Query("levelValue"),
	}
	if initial.room() != "" {
		client.handle(initial)
	}

	go client.writePump()
	go client.readPump()
}

// StatsHandler reports connected clients and room sizes.
func (m *Manager) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, m.Stats())
}
