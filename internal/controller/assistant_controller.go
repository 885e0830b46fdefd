package controller

import (
	"ai-catalog-admin-be/internal/dto"
	"ai-catalog-admin-be/internal/pkg/serverutils"
	"ai-catalog-admin-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session", c.CreateSession)
	h.Post("message", c.SendMessage)
	h.Get("session/:id/history", c.GetHistory)
	h.Delete("session/:id", c.ClearSession)
}

func (c *assistantController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.assistantService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *assistantController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.SendMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}

func (c *assistantController) GetHistory(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session id is required")
	}

	res, err := c.assistantService.GetHistory(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}

func (c *assistantController) ClearSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session id is required")
	}

	if err := c.assistantService.ClearSession(ctx.Context(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear session", nil))
}
