package delivery

import (
	"time"

	"marketplace-delivery/internal/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{}

// statusPollInterval is how often the stream re-reads the assignment.
const statusPollInterval = 3 * time.Second

// statusFrame is one message of the tracking stream.
type statusFrame struct {
	AssignmentID string                  `json:"assignment_id"`
	Status       models.AssignmentStatus `json:"status"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// HandleTrack upgrades the connection and streams assignment status
// changes until the lifecycle reaches a terminal state or the client
// goes away.
func (h *Handler) HandleTrack(c echo.Context) error {
	assignmentID := c.Param("assignmentId")
	ctx := c.Request().Context()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	var last models.AssignmentStatus
	for {
		a, err := h.svc.GetAssignment(ctx, assignmentID)
		if err != nil {
			return nil // assignment gone or context cancelled, end the stream
		}
		if a.Status != last {
			last = a.Status
			frame := statusFrame{AssignmentID: a.ID, Status: a.Status, UpdatedAt: a.UpdatedAt}
			if err := conn.WriteJSON(frame); err != nil {
				return nil
			}
		}
		if a.Status.Terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
