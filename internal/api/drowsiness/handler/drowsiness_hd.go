package drowsinessHandler

import (
	"WakeGuard/internal/api/drowsiness"
	contextPkg "WakeGuard/pkg/context"
	"WakeGuard/pkg/handlerUtil"
	"WakeGuard/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

func (h *DrowsinessHandler) GetStatus(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 2*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	status, err := h.drowsinessService.LatestStatus(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "latest_status")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, drowsiness.StatusResponse{
			Data: status,
		})
	}
}

func (h *DrowsinessHandler) GetAlerts(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 2*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var query drowsiness.AlertsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	log.WithRequestID(h.log, c).WithFields(log.Fields{
		"path":  ctx.Path(),
		"limit": query.Limit,
	}).Debug("Listing alert events")

	events, err := h.drowsinessService.RecentAlerts(c, query.Limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "recent_alerts")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, drowsiness.AlertsResponse{
		Data:  events,
		Count: len(events),
	})
}

func (h *DrowsinessHandler) handleStatusStream(c *websocket.Conn) {
	h.log.Info("Status stream client connected")
	defer h.log.Info("Status stream client disconnected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Errorf("Status stream read error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	var lastSequence uint64
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		msg := drowsiness.StreamMessage{Type: "status"}
		status, err := h.drowsinessService.LatestStatus(context.Background())
		switch {
		case errors.Is(err, drowsiness.ErrStatusNotReady):
			msg = drowsiness.StreamMessage{Type: "waiting", Error: err.Error()}
		case err != nil:
			msg = drowsiness.StreamMessage{Type: "error", Error: err.Error()}
		case status.Sequence == lastSequence:
			continue
		default:
			lastSequence = status.Sequence
			msg.Status = &status
		}

		if err := c.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			h.log.Errorf("Error writing status: %v", err)
			return
		}
	}
}
