package handlers

import (
	"net/http"

	"parkly/services/user"
	"parkly/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Service user.UserService
}

func NewUserHandler(service user.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	account, token, err := h.Service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Registration failed", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": account, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	account, token, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Login failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "token": token})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	account, err := h.Service.GetUserByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "User not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, account)
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

// RegisterDeviceToken stores the push token for the user's device.
func (h *UserHandler) RegisterDeviceToken(c *gin.Context) {
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.Service.RegisterDeviceToken(c.Request.Context(), c.GetString("userID"), req.Token); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to register device token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}
