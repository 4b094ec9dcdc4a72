package controller

import (
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/pkg/serverutils"
	"knowledge-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	PostMessage(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	jwt         fiber.Handler
}

func NewChatController(chatService service.IChatService, jwt fiber.Handler) IChatController {
	return &chatController{
		chatService: chatService,
		jwt:         jwt,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(c.jwt)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id/messages", c.Messages)
	h.Post(":id/message", c.PostMessage)
	h.Delete(":id", c.Delete)
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat", res))
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	res, err := c.chatService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chats", res))
}

func (c *chatController) Messages(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chatService.Messages(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *chatController) PostMessage(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.PostMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ChatId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.PostMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", res))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chatService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat", fiber.Map{"id": id}))
}
