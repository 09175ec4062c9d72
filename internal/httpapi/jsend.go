package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// errorBody is the flat error shape the front-end reads from /api routes.
type errorBody struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{
		Status: "success",
		Data:   data,
	})
}

func failJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, errorBody{Error: message})
}

func internalError(c echo.Context, message string, err error) error {
	body := errorBody{Error: message}
	if err != nil {
		body.Message = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
