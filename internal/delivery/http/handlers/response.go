package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/dto/order/response"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, response.Envelope{Success: true, Data: data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, response.Envelope{
		Error: &response.ErrorBody{Code: string(domain.KindValidation), Message: message},
	})
}

// respondError maps the domain error taxonomy onto HTTP statuses. Internal
// causes are logged and never echoed back.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	message := "internal error"

	var de *domain.Error
	if errors.As(err, &de) && kind != domain.KindInternal {
		message = de.Message
	}
	if kind == domain.KindInternal {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(statusFor(kind), response.Envelope{
		Error: &response.ErrorBody{Code: string(kind), Message: message},
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState, domain.KindDuplicateNotification:
		return http.StatusConflict
	case domain.KindValidation, domain.KindVerification:
		return http.StatusBadRequest
	case domain.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
