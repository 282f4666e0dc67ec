package assistantapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

const maxMessageLength = 10000

type Handlers struct {
	sessions *Sessions
}

func NewHandlers(sessions *Sessions) *Handlers {
	return &Handlers{sessions: sessions}
}

// RegisterRoutes mounts the assistant routes under router, normally /api/v1.
func (h *Handlers) RegisterRoutes(router fiber.Router) {
	g := router.Group("/assistant/sessions")
	g.Post("/", h.CreateSession)
	g.Post("/:id/messages", h.SendMessage)
	g.Delete("/:id", h.DeleteSession)
}

type MessageRequest struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	SessionID string          `json:"session_id"`
	Reply     assistant.Reply `json:"reply"`
	Text      string          `json:"text"`
	Mode      string          `json:"mode"`
}

// CreateSession allocates an id. The orchestrator itself is created on the
// first message.
func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": h.sessions.NewID(),
	})
}

func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	id := c.Params("id")
	if strings.TrimSpace(id) == "" {
		return errx.Validation("session id is required", errx.FieldError{Field: "id", Message: "is required"})
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.CodeValidation)
	}
	msg := strings.TrimSpace(req.Message)
	switch {
	case msg == "":
		return errx.Validation("message is required", errx.FieldError{Field: "message", Message: "is required"})
	case len(msg) > maxMessageLength:
		return errx.Validation("message is too long", errx.FieldError{Field: "message", Message: "must be at most 10000 characters"})
	}

	sess := h.sessions.acquire(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply := sess.orch.Process(c.UserContext(), msg)
	return c.JSON(MessageResponse{
		SessionID: id,
		Reply:     reply,
		Text:      reply.String(),
		Mode:      sess.orch.Mode(),
	})
}

func (h *Handlers) DeleteSession(c *fiber.Ctx) error {
	if !h.sessions.Remove(c.Params("id")) {
		return errx.New(errx.CodeNotFound, "session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
