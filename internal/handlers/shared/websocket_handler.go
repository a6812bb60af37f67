package handlers

import (
	"net/http"

	"kaavalcircle/internal/utils"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConnectionServer upgrades a request and subscribes it to rooms.
type ConnectionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string, rooms []string) error
}

type WebSocketHandler struct {
	server ConnectionServer
	logger *logger.Logger
}

func NewWebSocketHandler(server ConnectionServer, logger *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		server: server,
		logger: logger,
	}
}

// Connect joins the caller to their own room, and police to the shared
// police room as well.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		return
	}

	userID := viewer.UserID.Hex()
	rooms := ConnectionRooms(userID, viewer.IsPolice())

	if err := h.server.Serve(c.Writer, c.Request, userID, rooms); err != nil {
		// The upgrader has already written the HTTP error.
		h.logger.WithError(err).WithField("user_id", userID).Debug("WebSocket upgrade failed")
		return
	}
	h.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"rooms":   rooms,
	}).Debug("WebSocket connected")
}

func ConnectionRooms(userID string, police bool) []string {
	rooms := []string{utils.UserRoom(userID)}
	if police {
		rooms = append(rooms, utils.RoomPolice)
	}
	return rooms
}
