package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/pkg/utils"
)

func (h *Handler) PutDriverLicense(c *gin.Context) {
	var input models.DriverLicenseInput
	if !bind(c, &input) {
		return
	}
	dl, err := h.svc.Document().SubmitDriverLicense(c.Request.Context(), actor(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "driver license saved", dl)
}

func (h *Handler) PutCitizenID(c *gin.Context) {
	var input models.CitizenIDInput
	if !bind(c, &input) {
		return
	}
	cid, err := h.svc.Document().SubmitCitizenID(c.Request.Context(), actor(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "citizen id saved", cid)
}

func (h *Handler) MyDocuments(c *gin.Context) {
	docs, err := h.svc.Document().Get(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "documents", docs)
}
