package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/kafe-cerita-bot/kds"
	"github.com/yeremiapane/kafe-cerita-bot/models"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController membuat handler websocket layar bar. allowOrigin kosong berarti semua origin diterima.
func NewKDSController(hub *kds.Hub, allowOrigin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowOrigin == "" || allowOrigin == "*" || origin == "" || origin == allowOrigin
			},
		},
	}
}

// Connect -> endpoint WebSocket untuk barista dan admin
func (kc *KDSController) Connect(c *gin.Context) {
	role := c.GetString("role")
	if role != models.RoleBarista && role != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.Hub.RegisterClient(ws, role)
	defer kc.Hub.UnregisterClient(ws)

	// layar hanya menerima; baca sampai koneksi putus
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
