package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
	"github.com/pathcare/pathlab-api/utils"
	"gorm.io/gorm"
)

// RequestPasswordResetRequest represents the request body for requesting a
// reset link
type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetNewPasswordRequest represents the request body for redeeming a reset link
type SetNewPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// RequestPasswordReset handles POST /api/password-reset - emails a reset
// link to the account's address. An unexpired token is reused so repeated
// requests do not invalidate a link already sitting in the user's inbox.
func RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User with given email does not exist",
			},
		})
		return
	}

	var token models.ResetToken
	err := db.Where("user_id = ?", user.ID).First(&token).Error
	if err != nil || token.Expired() {
		if err == nil {
			// Replace the expired token
			db.Delete(&token)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create reset token",
				},
			})
			return
		}

		secret, genErr := utils.GenerateResetToken()
		if genErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to create reset token",
				},
			})
			return
		}

		token = models.ResetToken{UserID: user.ID, Token: secret}
		if createErr := db.Create(&token).Error; createErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create reset token",
				},
			})
			return
		}
	}

	cfg := config.GetConfig()
	url := fmt.Sprintf("%s/api/password-reset/%d/%s", cfg.BaseURL, user.ID, token.Token)
	if err := services.GetMailer().Send(user.Email, "Password Reset", url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAIL_ERROR",
				"message": "Failed to send password reset email",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset link sent to your email account",
	})
}

// VerifyPasswordResetLink handles GET /api/password-reset/:id/:token -
// validates a reset link without consuming it
func VerifyPasswordResetLink(c *gin.Context) {
	if _, _, ok := lookupResetToken(c); !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Valid reset link",
	})
}

// SetNewPassword handles POST /api/password-reset/:id/:token - sets a new
// complexity-checked password and consumes the token (single use)
func SetNewPassword(c *gin.Context) {
	user, token, ok := lookupResetToken(c)
	if !ok {
		return
	}

	var req SetNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := utils.ValidatePasswordComplexity(req.Password); err != nil {
		var pwErr *utils.PasswordError
		code := "INVALID_PASSWORD"
		if errors.As(err, &pwErr) {
			code = pwErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to reset password",
			},
		})
		return
	}

	db := config.GetDB()
	updates := map[string]interface{}{"password": hash, "verified": true}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to reset password",
			},
		})
		return
	}

	// Token is single use
	db.Delete(token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully",
	})
}

// lookupResetToken resolves the :id/:token pair to a user and an unexpired
// reset token, writing the uniform "Invalid link" error on failure
func lookupResetToken(c *gin.Context) (*models.User, *models.ResetToken, bool) {
	db := config.GetDB()

	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		invalidResetLink(c)
		return nil, nil, false
	}

	var token models.ResetToken
	err := db.Where("user_id = ? AND token = ?", user.ID, c.Param("token")).First(&token).Error
	if err != nil || token.Expired() {
		invalidResetLink(c)
		return nil, nil, false
	}

	return &user, &token, true
}

func invalidResetLink(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_LINK",
			"message": "Invalid link",
		},
	})
}
