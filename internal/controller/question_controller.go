package controller

import (
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/pkg/serverutils"
	"knowledge-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type questionController struct {
	questionService service.IQuestionService
	jwt             fiber.Handler
}

func NewQuestionController(questionService service.IQuestionService, jwt fiber.Handler) IQuestionController {
	return &questionController{
		questionService: questionService,
		jwt:             jwt,
	}
}

func (c *questionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/question/v1")
	h.Use(c.jwt)
	h.Post("", c.Ask)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *questionController) Ask(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionService.Ask(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Question accepted", res))
}

func (c *questionController) Show(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.questionService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show question", res))
}

func (c *questionController) List(ctx *fiber.Ctx) error {
	userId := requestUserId(ctx)

	res, err := c.questionService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list questions", res))
}
