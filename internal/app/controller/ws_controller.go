package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
	"github.com/stmiyata/seibi-backend/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Origin-restricted headers; auth happens via
	// the token query parameter before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSController struct {
	hub *ws.Hub
}

func NewWSController(hub *ws.Hub) *WSController {
	return &WSController{hub: hub}
}

// OrderFeed upgrades the connection and streams order events. Staff
// receive their own location's events, admins receive all of them.
// GET /api/ws/orders
func (ctrl *WSController) OrderFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	// The feed is for store dashboards only
	if actor.Role != model.RoleAdmin && !actor.Role.IsStaff() {
		apperrors.Forbidden(c, "この操作を行う権限がありません")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": actor.ID,
		})
		return
	}

	locationID := ""
	if actor.Role.IsStaff() && actor.LocationID != nil {
		locationID = *actor.LocationID
	}
	if actor.Role.IsStaff() && actor.LocationID == nil {
		// Staff without a location would otherwise see everything
		conn.Close()
		return
	}

	client := &ws.Client{
		Hub:        ctrl.hub,
		Conn:       &ws.Conn{Conn: conn},
		UserID:     actor.ID,
		LocationID: locationID,
		Send:       make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
