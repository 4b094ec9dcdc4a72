package controller

import (
	"knowledge-assistant-be/internal/service"
	"knowledge-assistant-be/pkg/channels/pagerduty"

	"github.com/gofiber/fiber/v2"
)

type IPagerDutyWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

type pagerDutyWebhookController struct {
	webhookService service.IPagerDutyWebhookService
}

func NewPagerDutyWebhookController(webhookService service.IPagerDutyWebhookService) IPagerDutyWebhookController {
	return &pagerDutyWebhookController{webhookService: webhookService}
}

func (c *pagerDutyWebhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/pagerduty", c.Handle)
}

func (c *pagerDutyWebhookController) Handle(ctx *fiber.Ctx) error {
	body := ctx.Body()

	evt, err := pagerduty.ParseWebhook(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed webhook payload")
	}

	if err := c.webhookService.HandleEvent(ctx.Context(), evt, body); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusAccepted)
}
