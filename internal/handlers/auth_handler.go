package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/internal/models"
	"carrental-backend/pkg/utils"
)

func (h *Handler) Register(c *gin.Context) {
	var input models.RegisterInput
	if !bind(c, &input) {
		return
	}

	user, err := h.svc.User().Register(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "registered, please log in", user)
}

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if !bind(c, &input) {
		return
	}

	token, user, err := h.svc.User().Login(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "login successful", gin.H{
		"token": token,
		"user":  user,
	})
}
