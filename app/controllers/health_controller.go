package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/response"
)

// Pinger checks backend reachability.
type Pinger func(ctx context.Context) error

type HealthController struct {
	ping Pinger
}

func NewHealthController(ping Pinger) *HealthController {
	return &HealthController{ping: ping}
}

// Show answers 200 {status: ok}, or 503 when the store does not answer.
func (c *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if c.ping != nil {
		if err := c.ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn("health: store ping failed", "error", err)
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	response.OK(w, map[string]string{"status": "ok"})
}
