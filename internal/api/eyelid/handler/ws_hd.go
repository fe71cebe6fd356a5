package eyelidHandler

import (
	"EyelidService/internal/api/eyelid"
	contextPkg "EyelidService/pkg/context"
	"EyelidService/pkg/log"
	"EyelidService/pkg/response"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// handleWebSocket treats every binary frame as an independent analysis and
// answers with the annotated JPEG, or a JSON error frame.
func (h *EyelidHandler) handleWebSocket(c *websocket.Conn) {
	h.log.Info("Eyelid WebSocket client connected")
	defer h.log.Info("Eyelid WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Eyelid WebSocket error: %v", err)
			} else {
				h.log.Info("Eyelid WebSocket connection closed")
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			if err := c.WriteJSON(eyelid.WebsocketError{Error: "expected a binary image frame"}); err != nil {
				h.log.Errorf("Error sending error response: %v", err)
				break
			}
			continue
		}

		if !h.processFrame(c, message) {
			break
		}
	}
}

// processFrame reports false when the connection is no longer writable.
func (h *EyelidHandler) processFrame(c *websocket.Conn, frame []byte) bool {
	requestID, err := h.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		requestID = "unknown"
	}

	ctx := contextPkg.WithRequestID(context.Background(), requestID)
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	frameLog := log.WithRequestID(h.log, ctx)
	frameLog.WithField("frame_size", len(frame)).Debug("Received binary frame for eyelid analysis")

	defer c.SetWriteDeadline(time.Time{})

	result, err := h.eyelidService.Analyze(ctx, frame)
	if err != nil {
		frameLog.WithFields(log.Fields{
			"error":  err.Error(),
			"status": response.StatusOf(err, fiber.StatusInternalServerError),
		}).Warn("Error processing eyelid frame")

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return false
		}
		if writeErr := c.WriteJSON(eyelid.WebsocketError{Error: err.Error()}); writeErr != nil {
			h.log.Errorf("Error sending error response: %v", writeErr)
			return false
		}
		return true
	}

	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		h.log.Errorf("Error setting write deadline: %v", err)
		return false
	}
	if err := c.WriteMessage(websocket.BinaryMessage, result.Image); err != nil {
		h.log.Errorf("Error writing annotated frame: %v", err)
		return false
	}

	return true
}
