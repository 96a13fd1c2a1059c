package serverutils

import "github.com/gofiber/fiber/v2"

type BaseResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) BaseResponse {
	return BaseResponse{Message: message, Data: data}
}

// ErrorResponse is the only error shape clients ever see.
func ErrorResponse(message string) fiber.Map {
	return fiber.Map{"error": message}
}
