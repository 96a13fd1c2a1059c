package controller

import (
	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	SetSender(ctx *fiber.Ctx) error
	ListUsage(ctx *fiber.Ctx) error
	HandleNotification(ctx *fiber.Ctx) error
}

type billingController struct {
	billingService service.IBillingService
	jwtSecret      string
}

func NewBillingController(billingService service.IBillingService, jwtSecret string) IBillingController {
	return &billingController{
		billingService: billingService,
		jwtSecret:      jwtSecret,
	}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	r.Post("/set_sender", c.SetSender)
	r.Get("/usage", serverutils.JwtMiddleware(c.jwtSecret), c.ListUsage)
	r.Post("/billing/midtrans/notification", c.HandleNotification)
}

func (c *billingController) SetSender(ctx *fiber.Ctx) error {
	var req dto.SetSenderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.billingService.SetSender(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *billingController) ListUsage(ctx *fiber.Ctx) error {
	accountId, ok := serverutils.AccountID(ctx)
	if !ok {
		return serverutils.ErrMissingToken
	}

	res, err := c.billingService.ListUsage(ctx.UserContext(), accountId, ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get usage", res))
}

func (c *billingController) HandleNotification(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.billingService.HandleNotification(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}
