package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/models"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/service"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// SessionCookie ties the browser that started a checkout to the order it is
// paying for, so the gateway return can be resolved without a token.
const SessionCookie = "rental_checkout"

func (h *Handler) InitiatePayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.InitiatePaymentInput
	if !bind(c, &input) {
		return
	}

	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
	}
	checkout, err := h.svc.Payment().Initiate(c.Request.Context(), actor(c), id, input, sessionID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sessionID, int(cache.PendingOrderTTL.Seconds()), "/", "", h.secureCookie, true)
	utils.APIResponse(c, http.StatusCreated, true, "redirect the browser to pay_url", checkout)
}

// PaymentReturn is where both gateways send the browser back. It always
// redirects; there is no error page.
func (h *Handler) PaymentReturn(c *gin.Context) {
	sessionID, _ := c.Cookie(SessionCookie)
	res := h.svc.Payment().ResolveRedirect(c.Request.Context(), c.Request.URL.Query(), sessionID)

	h.log.Info("payment return",
		logger.String("provider", string(res.Provider)),
		logger.String("outcome", res.Outcome.String()),
		logger.Uint64("order_id", res.OrderID),
		logger.String("source", res.Source))

	if sessionID != "" {
		c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	}
	c.Redirect(http.StatusFound, res.Target)
}

// MoMoIPN answers 204 once the notification is handled or safely ignored.
func (h *Handler) MoMoIPN(c *gin.Context) {
	var n payment.MoMoIPN
	if err := c.ShouldBindJSON(&n); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid payload", nil)
		return
	}
	if err := h.svc.Payment().HandleMoMoIPN(c.Request.Context(), n); err != nil && !service.IsIgnorable(err) {
		h.callbackFailed(c, payment.ProviderMoMo, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PayOSWebhook(c *gin.Context) {
	var w payment.PayOSWebhook
	if err := c.ShouldBindJSON(&w); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid payload", nil)
		return
	}
	// PayOS probes the URL with a webhook that matches no payment
	if err := h.svc.Payment().HandlePayOSWebhook(c.Request.Context(), w); err != nil && !service.IsIgnorable(err) {
		h.callbackFailed(c, payment.ProviderPayOS, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) MidtransNotification(c *gin.Context) {
	var n payment.MidtransNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid payload", nil)
		return
	}
	if err := h.svc.Payment().HandleMidtransNotification(c.Request.Context(), n); err != nil && !service.IsIgnorable(err) {
		h.callbackFailed(c, payment.ProviderMidtrans, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "OK", nil)
}

func (h *Handler) callbackFailed(c *gin.Context, p payment.Provider, err error) {
	h.log.Warning("payment callback rejected", logger.String("provider", string(p)), logger.Error(err))
	h.fail(c, err)
}

func (h *Handler) ListMyPayments(c *gin.Context) {
	list, err := h.svc.Payment().ListMine(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "payments", list)
}

func (h *Handler) ListOrderPayments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Payment().ListForOrder(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "payments", list)
}
