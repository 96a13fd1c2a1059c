package controller

import (
	"io"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		return service.ErrNoFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	req := dto.UploadDocumentRequest{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Data:     data,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if _, err := c.documentService.Upload(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(dto.MsgDocumentProcessed, nil))
}
