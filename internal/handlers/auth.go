package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/validation"
)

// AuthHandler handles authentication and account routes
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// RegisterRequest is the payload of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	ImageURL string `json:"image_url" validate:"omitempty,max=500"`
}

func (r *RegisterRequest) Validate() error { return validation.Struct(r) }

// LoginRequest is the payload of POST /api/auth/token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error { return validation.Struct(r) }

// RefreshRequest carries a raw refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error { return validation.Struct(r) }

// UpdateProfileRequest is the payload of PUT /api/auth/edit
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=500"`
	Consent  *bool   `json:"consent"`
}

func (r *UpdateProfileRequest) Validate() error { return validation.Struct(r) }

// DeleteAccountRequest is the payload of DELETE /api/auth/delete-account
type DeleteAccountRequest struct {
	ConfirmationText string `json:"confirmation_text" validate:"required"`
	Reason           string `json:"reason" validate:"omitempty,max=500"`
}

func (r *DeleteAccountRequest) Validate() error { return validation.Struct(r) }

// Register handles POST /api/auth/register
// @Summary Register a new user
// @Description Create a user account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} services.PublicUser
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.register")
	}

	user, err := services.RegisterUser(h.DB, h.Cfg, req.Name, req.Email, req.Password, req.ImageURL)
	if err != nil {
		return serviceErrorResponse(c, err, "auth.register")
	}

	return c.Status(fiber.StatusCreated).JSON(services.ToPublicUser(user))
}

// Token handles POST /api/auth/token
// @Summary Log in
// @Description Exchange email and password for an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req LoginRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.token")
	}

	_, pair, err := services.Authenticate(h.DB, h.Cfg, req.Email, req.Password)
	if err != nil {
		return serviceErrorResponse(c, err, "auth.token")
	}

	return c.Status(fiber.StatusOK).JSON(pair)
}

// Refresh handles POST /api/auth/refresh
// @Summary Rotate a refresh token
// @Description Revoke the presented refresh token and issue a new pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.refresh")
	}

	pair, err := services.RefreshTokens(h.DB, h.Cfg, req.RefreshToken)
	if err != nil {
		return serviceErrorResponse(c, err, "auth.refresh")
	}

	return c.Status(fiber.StatusOK).JSON(pair)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke a refresh token
// @Tags Auth
// @Accept json
// @Param body body RefreshRequest true "Refresh token"
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.logout")
	}

	if err := services.RevokeRefreshToken(h.DB, req.RefreshToken); err != nil {
		return serviceErrorResponse(c, err, "auth.logout")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth/me
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.PublicUser
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := services.GetUser(h.DB, middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "auth.me")
	}
	return c.Status(fiber.StatusOK).JSON(services.ToPublicUser(user))
}

// Edit handles PUT /api/auth/edit
// @Summary Update profile
// @Description Partial update of name, email, password, image, or consent
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} services.PublicUser
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/edit [put]
func (h *AuthHandler) Edit(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.edit")
	}

	user, err := services.UpdateUser(h.DB, h.Cfg, middleware.UserID(c), services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
		Consent:  req.Consent,
	})
	if err != nil {
		return serviceErrorResponse(c, err, "auth.edit")
	}

	return c.Status(fiber.StatusOK).JSON(services.ToPublicUser(user))
}

// Remove handles DELETE /api/auth/remove
// @Summary Delete current user
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/remove [delete]
func (h *AuthHandler) Remove(c *fiber.Ctx) error {
	if err := services.DeleteUser(h.DB, middleware.UserID(c)); err != nil {
		return serviceErrorResponse(c, err, "auth.remove")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportData handles GET /api/auth/export-data
// @Summary Export all user data
// @Description Complete GDPR export of profile, moods, chats, and recommendations
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.UserExport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/export-data [get]
func (h *AuthHandler) ExportData(c *fiber.Ctx) error {
	export, err := services.ExportUserData(h.DB, middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "auth.exportData")
	}
	return c.Status(fiber.StatusOK).JSON(export)
}

// DownloadExport handles GET /api/auth/export-data/download
// @Summary Download user data as a file
// @Description Same payload as export-data, served as a JSON attachment
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.UserExport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/export-data/download [get]
func (h *AuthHandler) DownloadExport(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	export, err := services.ExportUserData(h.DB, userID)
	if err != nil {
		return serviceErrorResponse(c, err, "auth.exportData")
	}

	filename := fmt.Sprintf("auralys_data_export_%s_%s.json", userID, time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Status(fiber.StatusOK).JSON(export)
}

// DeleteAccount handles DELETE /api/auth/delete-account
// @Summary Permanently delete account and data
// @Description GDPR erasure; requires confirmation_text "DELETE"
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DeleteAccountRequest true "Confirmation"
// @Success 200 {object} services.DeletionReceipt
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/delete-account [delete]
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	var req DeleteAccountRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "auth.deleteAccount")
	}

	receipt, err := services.DeleteUserAccount(h.DB, middleware.UserID(c), req.ConfirmationText, req.Reason)
	if err != nil {
		return serviceErrorResponse(c, err, "auth.deleteAccount")
	}

	return c.Status(fiber.StatusOK).JSON(receipt)
}

// AnonymizeAccount handles POST /api/auth/anonymize-account
// @Summary Anonymize account
// @Description Replace identifiers with anonymous values and revoke consent
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.AnonymizationReceipt
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/anonymize-account [post]
func (h *AuthHandler) AnonymizeAccount(c *fiber.Ctx) error {
	receipt, err := services.AnonymizeUser(h.DB, middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "auth.anonymizeAccount")
	}
	return c.Status(fiber.StatusOK).JSON(receipt)
}

// DataSummary handles GET /api/auth/data-summary
// @Summary Summarize stored data
// @Description GDPR transparency overview of stored data categories
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.DataSummary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/data-summary [get]
func (h *AuthHandler) DataSummary(c *fiber.Ctx) error {
	summary, err := services.GetDataSummary(h.DB, middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "auth.dataSummary")
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
