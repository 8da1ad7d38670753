// Package controllers holds the HTTP handlers of the /api surface.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/response"
)

// writeError maps service errors to status codes and the {message, error}
// body. It is the only place that does so.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPrice):
		response.Error(w, http.StatusBadRequest, "Special price must be positive and lower than the product price")
	case errors.Is(err, services.ErrValidation):
		response.ErrorDetail(w, http.StatusBadRequest, "Validation failed", detail(err))
	case errors.Is(err, services.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.ErrorDetail(w, http.StatusInternalServerError, "Internal Server Error", "store unavailable")
	}
}

// detail strips the sentinel prefix so clients see only the specific cause.
func detail(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, services.ErrValidation.Error()+": "); ok {
		return rest
	}
	return msg
}
