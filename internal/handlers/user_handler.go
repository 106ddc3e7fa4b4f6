package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/pkg/utils"
)

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.svc.User().Profile(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "profile", user)
}
