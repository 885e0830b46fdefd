package handler

import (
	"os"

	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/internal/pkg/serverutils"
	"ai-catalog-admin-be/internal/repository/contract"
	internalWS "ai-catalog-admin-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultAuditLimit = 50

// EventHandler exposes the live assistant event stream over WebSocket and
// the persisted-entry audit log over REST.
type EventHandler struct {
	hub    *internalWS.Hub
	audits contract.AuditRepository
	logger logger.ILogger
}

func NewEventHandler(hub *internalWS.Hub, audits contract.AuditRepository, log logger.ILogger) *EventHandler {
	return &EventHandler{
		hub:    hub,
		audits: audits,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *EventHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on the WS handshake, so the token may
	// arrive as a query param instead.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("event_handler", "invalid token in ws handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("event_handler", "starting websocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("event_handler", "websocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// GetAuditLog returns the most recently persisted catalog entries.
func (h *EventHandler) GetAuditLog(c *fiber.Ctx) error {
	if h.audits == nil {
		return c.JSON(serverutils.SuccessResponse("Success get audit log", []any{}))
	}

	limit := c.QueryInt("limit", defaultAuditLimit)
	logs, err := h.audits.FindRecent(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success get audit log", logs))
}

// RegisterRoutes registers the event routes.
func (h *EventHandler) RegisterRoutes(router fiber.Router) {
	audit := router.Group("/catalog/v1")
	audit.Use(serverutils.JwtMiddleware)
	audit.Get("audit", h.GetAuditLog)

	// WebSocket
	router.Get("/ws", h.ServeWs)
}
