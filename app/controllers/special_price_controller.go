package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/services"
	"github.com/shashiranjanraj/pricebook/pkg/bind"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/response"
	"github.com/shashiranjanraj/pricebook/pkg/sse"
)

// StreamHeartbeat is how often an idle price stream sends a keepalive.
var StreamHeartbeat = 15 * time.Second

// streamBuffer bounds undelivered events per client; a slower client drops.
const streamBuffer = 16

type SpecialPriceController struct {
	pricing *services.PricingService
}

func NewSpecialPriceController(pricing *services.PricingService) *SpecialPriceController {
	return &SpecialPriceController{pricing: pricing}
}

// Store creates or replaces the caller-specified (userId, productSku) override.
func (c *SpecialPriceController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.UpsertSpecialPriceInput
	errs, err := bind.JSON(w, r, &in)
	if err != nil {
		if errors.Is(err, bind.ErrMalformed) {
			response.ErrorDetail(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		writeError(w, r, err)
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sp, err := c.pricing.UpsertSpecialPrice(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, sp)
}

// Index lists the overrides of ?userId=, which is required.
func (c *SpecialPriceController) Index(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	rows, err := c.pricing.ListSpecialPrices(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, rows)
}

// Validate reports whether {userId} has any override.
func (c *SpecialPriceController) Validate(w http.ResponseWriter, r *http.Request) {
	ok, err := c.pricing.HasSpecialPrices(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]bool{"hasSpecialPrices": ok})
}

// Stream pushes each saved override of ?userId= as a "special_price" event
// until the client disconnects.
func (c *SpecialPriceController) Stream(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	updates := make(chan models.SpecialPrice, streamBuffer)
	unsubscribe := c.pricing.Events().Subscribe(services.TopicSpecialPriceSaved, func(p interface{}) {
		sp, ok := p.(models.SpecialPrice)
		if !ok || sp.UserID != userID {
			return
		}
		select {
		case updates <- sp:
		default:
			logger.Warn("price stream: client too slow, event dropped", "user_id", userID, "sku", sp.ProductSKU)
		}
	})
	defer unsubscribe()

	stream, err := sse.New(w, r)
	if err != nil {
		logger.WithCtx(r.Context()).Error("price stream: open", "error", err)
		return
	}

	heartbeat := time.NewTicker(StreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case <-stream.Closing():
			return
		case sp := <-updates:
			if err := stream.Send("special_price", sp); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := stream.Comment("keepalive"); err != nil {
				return
			}
		}
	}
}
