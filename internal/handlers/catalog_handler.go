package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/pkg/utils"
)

func (h *Handler) ListCars(c *gin.Context) {
	cars, err := h.svc.Catalog().ListCars(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "cars", cars)
}

func (h *Handler) GetCar(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	car, err := h.svc.Catalog().GetCar(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "car", car)
}

func (h *Handler) BookedRanges(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ranges, err := h.svc.Catalog().BookedRanges(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "booked ranges", ranges)
}

func (h *Handler) Quote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input models.QuoteInput
	if !bind(c, &input) {
		return
	}
	quote, err := h.svc.Catalog().Quote(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "quote", quote)
}

func (h *Handler) CarFeedback(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Catalog().CarFeedback(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "feedback", list)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.svc.Catalog().ListLocations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "rental locations", locs)
}
