package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/pkg/utils"
)

// CreateOrder books a car. The order starts in pending and the deposit
// countdown starts with it.
func (h *Handler) CreateOrder(c *gin.Context) {
	var input models.CreateOrderInput
	if !bind(c, &input) {
		return
	}

	order, err := h.svc.Order().Create(c.Request.Context(), actor(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "order created, pay the deposit within 10 minutes", order)
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	orders, err := h.svc.Order().ListMine(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "orders", orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Order().Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "order", order)
}

func (h *Handler) OrderCountdown(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Order().Countdown(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "deposit countdown", view)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.CancelOrderInput
	if c.Request.ContentLength > 0 && !bind(c, &input) {
		return
	}
	order, err := h.svc.Order().Cancel(c.Request.Context(), actor(c), id, input.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "order cancelled", order)
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.FeedbackInput
	if !bind(c, &input) {
		return
	}
	fb, err := h.svc.Order().SubmitFeedback(c.Request.Context(), actor(c), id, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "thanks for your feedback", fb)
}
