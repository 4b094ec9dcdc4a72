package controller

import (
	"knowledge-assistant-be/internal/service"
	"knowledge-assistant-be/pkg/channels/slack"

	"github.com/gofiber/fiber/v2"
)

type ISlackWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

// SignatureVerifier validates the Slack request signature over the raw
// body before anything in it is trusted.
type SignatureVerifier interface {
	VerifySignature(timestamp, signature string, body []byte) error
}

type slackWebhookController struct {
	webhookService service.ISlackWebhookService
	verifier       SignatureVerifier
}

func NewSlackWebhookController(webhookService service.ISlackWebhookService, verifier SignatureVerifier) ISlackWebhookController {
	return &slackWebhookController{
		webhookService: webhookService,
		verifier:       verifier,
	}
}

func (c *slackWebhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/slack", c.Handle)
}

func (c *slackWebhookController) Handle(ctx *fiber.Ctx) error {
	body := ctx.Body()

	err := c.verifier.VerifySignature(
		ctx.Get("X-Slack-Request-Timestamp"),
		ctx.Get("X-Slack-Signature"),
		body,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid request signature")
	}

	env, err := slack.ParseEnvelope(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed event payload")
	}

	switch env.Type {
	case slack.EnvelopeURLVerification:
		return ctx.JSON(fiber.Map{"challenge": env.Challenge})
	case slack.EnvelopeEventCallback:
		if err := c.webhookService.HandleEvent(ctx.Context(), env, body); err != nil {
			return err
		}
		return ctx.SendStatus(fiber.StatusOK)
	default:
		// Unknown envelope types are acknowledged so Slack stops
		// retrying them.
		return ctx.SendStatus(fiber.StatusOK)
	}
}
