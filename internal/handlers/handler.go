package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/middleware"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/service"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// Handler binds HTTP requests to the services.
type Handler struct {
	svc          service.IServiceManager
	log          logger.ILogger
	secureCookie bool
}

func New(svc service.IServiceManager, log logger.ILogger, secureCookie bool) *Handler {
	return &Handler{svc: svc, log: log, secureCookie: secureCookie}
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: c.GetUint64(middleware.CtxUserID),
		RoleID: c.GetUint(middleware.CtxRoleID),
	}
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id := utils.StringToUint64(c.Param(name))
	if id == 0 {
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, in interface{}) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid input", err.Error())
		return false
	}
	return true
}

// fail maps service errors onto status codes. Unknown errors are logged and
// answered without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed",
			logger.String("route", c.FullPath()),
			logger.String("request_id", c.GetString(middleware.CtxRequestID)),
			logger.Error(err))
		utils.APIResponse(c, code, false, "internal server error", nil)
		return
	}
	utils.APIResponse(c, code, false, err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrFeedbackExists),
		errors.Is(err, service.ErrStaleOrder),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, rental.ErrBookingConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, rental.ErrInvalidRange),
		errors.Is(err, rental.ErrInvalidInspection),
		errors.Is(err, rental.ErrUnknownAction),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, rental.ErrActionNotAllowed),
		errors.Is(err, service.ErrDepositExpired),
		errors.Is(err, service.ErrNothingToPay),
		errors.Is(err, service.ErrCarUnavailable),
		errors.Is(err, service.ErrLocationClosed),
		errors.Is(err, service.ErrNotCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGatewayDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, payment.ErrGatewayRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
