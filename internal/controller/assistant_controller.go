package controller

import (
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/pkg/serverutils"
	"knowledge-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	CreateLibrary(ctx *fiber.Ctx) error
	ListLibraries(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	jwt              fiber.Handler
}

func NewAssistantController(assistantService service.IAssistantService, jwt fiber.Handler) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		jwt:              jwt,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(c.jwt)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)

	l := r.Group("/library/v1")
	l.Use(c.jwt)
	l.Post("", c.CreateLibrary)
	l.Get("", c.ListLibraries)
}

func (c *assistantController) Create(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.CreateAssistantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create assistant", res))
}

func (c *assistantController) Update(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateAssistantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update assistant", res))
}

func (c *assistantController) Show(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.assistantService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show assistant", res))
}

func (c *assistantController) List(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	res, err := c.assistantService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list assistants", res))
}

func (c *assistantController) Delete(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.assistantService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete assistant", fiber.Map{"id": id}))
}

func (c *assistantController) CreateLibrary(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.CreateLibraryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.CreateLibrary(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create library", res))
}

func (c *assistantController) ListLibraries(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	res, err := c.assistantService.ListLibraries(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list libraries", res))
}
