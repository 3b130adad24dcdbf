package controller

import (
	"ai-caresupervisor-be/internal/dto"
	"ai-caresupervisor-be/internal/pkg/serverutils"
	"ai-caresupervisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISupervisorController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	AnalyzeSelfScores(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type supervisorController struct {
	service service.ISupervisorService
	health  dto.HealthResponse
}

func NewSupervisorController(service service.ISupervisorService, health dto.HealthResponse) ISupervisorController {
	return &supervisorController{service: service, health: health}
}

func (c *supervisorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/supervisor/v1")
	h.Get("health", c.Health)

	h.Use(serverutils.JwtMiddleware)
	h.Post("chat", c.SendChat)
	h.Post("self-scores", c.AnalyzeSelfScores)
}

func (c *supervisorController) SendChat(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("user_id").(string)

	var req dto.SendSupervisorChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ProcessChat(ctx.Context(), userID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *supervisorController) AnalyzeSelfScores(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("user_id").(string)

	var req dto.SelfScoreRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AnalyzeSelfScores(ctx.Context(), userID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze self scores", res))
}

func (c *supervisorController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Supervisor healthy", c.health))
}
