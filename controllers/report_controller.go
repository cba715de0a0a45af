package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/middleware"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
	"github.com/pathcare/pathlab-api/utils"
)

// DownloadReport handles GET /api/reports/:filename - streams a report PDF to
// its appointment's owner or to an admin. The two 404 cases are distinct: an
// unknown filename versus a recorded filename whose stored file has gone
// missing.
func DownloadReport(c *gin.Context) {
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

	filename := c.Param("filename")
	if !utils.SafeFilename(filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid report filename",
			},
		})
		return
	}

	db := config.GetDB()
	var appointment models.Appointment
	if err := db.Where("report = ?", filename).First(&appointment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPORT_NOT_FOUND",
				"message": "No report with this filename",
			},
		})
		return
	}

	if appointment.UserID != userID {
		// Admin status comes from the database, never from the token
		var caller models.User
		if err := db.Select("is_admin").First(&caller, userID).Error; err != nil || !caller.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You do not have access to this report",
				},
			})
			return
		}
	}

	data, err := services.GetReportStore().Read(filename)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REPORT_FILE_MISSING",
					"message": "Report file is missing from storage",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to read report file",
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
