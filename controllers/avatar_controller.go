package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/middleware"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/utils"
)

// avatarDir returns the directory holding profile pictures
func avatarDir() string {
	return filepath.Join(config.GetConfig().UploadDir, "profiles")
}

// UploadAvatar handles PUT /api/profile/upload - replaces the caller's
// profile picture. The previous file is removed best-effort once the new one
// is in place.
func UploadAvatar(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "Authenticated user not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No image file was uploaded",
			},
		})
		return
	}

	ext, err := utils.ValidateImageFile(fileHeader)
	if err != nil {
		code := "INVALID_FILE"
		var upErr *utils.FileUploadError
		if errors.As(err, &upErr) {
			code = upErr.Code
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

	filename := utils.AvatarFilename(user.ID, ext)
	if _, err := utils.SaveUploadedFile(fileHeader, avatarDir(), filename); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store profile picture",
			},
		})
		return
	}

	previous := user.ProfilePicture
	if err := db.Model(&user).Update("profile_picture", filename).Error; err != nil {
		os.Remove(filepath.Join(avatarDir(), filename))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update profile picture",
			},
		})
		return
	}

	if previous != "" && utils.SafeFilename(previous) {
		os.Remove(filepath.Join(avatarDir(), previous))
	}

	user.ProfilePicture = filename
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user.Public(),
		"message": "Profile picture updated",
	})
}

// RemoveAvatar handles DELETE /api/profile/remove - clears the caller's
// profile picture and best-effort deletes the stored file
func RemoveAvatar(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "Authenticated user not found",
			},
		})
		return
	}

	previous := user.ProfilePicture
	if err := db.Model(&user).Update("profile_picture", "").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove profile picture",
			},
		})
		return
	}

	if previous != "" && utils.SafeFilename(previous) {
		os.Remove(filepath.Join(avatarDir(), previous))
	}

	user.ProfilePicture = ""
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user.Public(),
		"message": "Profile picture removed",
	})
}
