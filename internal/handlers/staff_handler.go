package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/internal/service"
	"carrental-backend/pkg/utils"
)

// ListOrders accepts ?status= repeated or comma separated, in any form the
// status normalizer understands.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.Order().ListAll(c.Request.Context(), c.QueryArray("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "orders", orders)
}

func (h *Handler) OrderActions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Order().Actions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "available actions", view)
}

type orderAction func(ctx context.Context, staff service.Actor, id uint64) (*models.RentalOrder, error)

// runAction handles the staff endpoints that take no body.
func (h *Handler) runAction(c *gin.Context, fn orderAction, message string) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, message, order)
}

// withBody binds the request body, which may be empty, before running fn.
func withBody[T any](h *Handler, c *gin.Context, fn func(ctx context.Context, staff service.Actor, id uint64, in T) (*models.RentalOrder, error), message string) {
	var input T
	if c.Request.ContentLength != 0 && !bind(c, &input) {
		return
	}
	h.runAction(c, func(ctx context.Context, staff service.Actor, id uint64) (*models.RentalOrder, error) {
		return fn(ctx, staff, id, input)
	}, message)
}

func (h *Handler) ConfirmDeposit(c *gin.Context) {
	withBody(h, c, h.svc.Order().ConfirmDeposit, "deposit confirmed")
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.runAction(c, h.svc.Order().CheckIn, "customer checked in")
}

func (h *Handler) RecordDelivery(c *gin.Context) {
	withBody(h, c, h.svc.Order().RecordDelivery, "vehicle delivered")
}

func (h *Handler) RecordReturn(c *gin.Context) {
	withBody(h, c, h.svc.Order().RecordReturn, "vehicle returned")
}

func (h *Handler) UpdateFees(c *gin.Context) {
	withBody(h, c, h.svc.Order().UpdateFees, "fees updated")
}

func (h *Handler) ConfirmTotal(c *gin.Context) {
	h.runAction(c, h.svc.Order().ConfirmTotal, "total confirmed")
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	withBody(h, c, h.svc.Order().ConfirmPayment, "payment confirmed")
}

func (h *Handler) RefundDeposit(c *gin.Context) {
	withBody(h, c, h.svc.Order().RefundDeposit, "deposit refunded")
}

func (h *Handler) StaffCancelOrder(c *gin.Context) {
	var input models.CancelOrderInput
	if c.Request.ContentLength != 0 && !bind(c, &input) {
		return
	}
	h.runAction(c, func(ctx context.Context, staff service.Actor, id uint64) (*models.RentalOrder, error) {
		return h.svc.Order().StaffCancel(ctx, staff, id, input.Reason)
	}, "order cancelled")
}

func (h *Handler) VerifyDocuments(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	var input models.VerifyDocumentsInput
	if !bind(c, &input) {
		return
	}
	docs, err := h.svc.Document().Verify(c.Request.Context(), actor(c), userID, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "documents verified", docs)
}

func (h *Handler) UserDocuments(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	docs, err := h.svc.Document().Get(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "documents", docs)
}
