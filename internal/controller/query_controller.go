package controller

import (
	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
	jwtSecret    string
}

func NewQueryController(queryService service.IQueryService, jwtSecret string) IQueryController {
	return &queryController{
		queryService: queryService,
		jwtSecret:    jwtSecret,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", serverutils.JwtMiddleware(c.jwtSecret), c.Query)
}

func (c *queryController) Query(ctx *fiber.Ctx) error {
	accountId, ok := serverutils.AccountID(ctx)
	if !ok {
		return serverutils.ErrMissingToken
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Ask(ctx.UserContext(), accountId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
