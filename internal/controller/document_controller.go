package controller

import (
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/pkg/serverutils"
	"knowledge-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	SetEnabled(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Related(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	jwt             fiber.Handler
}

func NewDocumentController(documentService service.IDocumentService, jwt fiber.Handler) IDocumentController {
	return &documentController{
		documentService: documentService,
		jwt:             jwt,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(c.jwt)
	h.Post("search", c.Search)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Get(":id/related", c.Related)
	h.Put(":id", c.Update)
	h.Put(":id/enabled", c.SetEnabled)
	h.Delete(":id", c.Delete)
}

func requestUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.documentService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) SetEnabled(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.SetDocumentEnabledRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := c.documentService.SetEnabled(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", fiber.Map{"id": id}))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.documentService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", fiber.Map{"id": id}))
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.SearchDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

func (c *documentController) Related(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))
	limit := ctx.QueryInt("limit", 0)

	res, err := c.documentService.Related(ctx.Context(), userId, id, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success fetch related documents", res))
}
