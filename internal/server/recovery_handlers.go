package server

import (
	"snapfeed/internal/models"
	"snapfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type forgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

// Code shape is not validated here: any mismatched or malformed code flows
// through the service and comes back as INVALID_CODE, so a mistyped code and
// a wrong code are indistinguishable to the caller.
type checkOTPRequest struct {
	Username string `json:"username" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
}

type resetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ForgotPassword handles POST /api/forgotPassword
// @Summary Request password reset
// @Description Issue a six digit recovery code and mail it to the account's address
// @Tags recovery
// @Accept json
// @Produce json
// @Param request body forgotPasswordRequest true "Recovery request"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /forgotPassword [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := s.parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.recoveryService.RequestReset(c.Context(), req.Username); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Reset code sent"})
}

// CheckOTP handles POST /api/checkOTP. Checking does not consume the code.
// @Summary Check recovery code
// @Description Validate a recovery code without consuming it
// @Tags recovery
// @Accept json
// @Produce json
// @Param request body checkOTPRequest true "Code check request"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /checkOTP [post]
func (s *Server) CheckOTP(c *fiber.Ctx) error {
	var req checkOTPRequest
	if err := s.parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.recoveryService.CheckCode(c.Context(), req.Username, req.OTP); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Code is valid"})
}

// ResetPassword handles POST /api/resetPassword
// @Summary Reset password
// @Description Consume a recovery code and install a new password
// @Tags recovery
// @Accept json
// @Produce json
// @Param request body resetPasswordRequest true "Password reset request"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /resetPassword [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := s.parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}

	if err := s.recoveryService.ResetPassword(c.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password reset successful"})
}
