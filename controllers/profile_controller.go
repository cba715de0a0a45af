package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
)

// ProfileRequest represents the request body for creating or updating a
// bundle profile
type ProfileRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Description string  `json:"description"`
	TestIDs     []uint  `json:"tests"`
}

// ListProfiles handles GET /api/profiles - lists bundles with their tests
// resolved (public)
func ListProfiles(c *gin.Context) {
	db := config.GetDB()

	var profiles []models.Profile
	if err := db.Preload("Tests").Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch profiles",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profiles,
	})
}

// CreateProfile handles POST /api/profiles - creates a bundle (admin only).
// The bundle price is stored as given; it is not derived from the referenced
// tests' total.
func CreateProfile(c *gin.Context) {
	var req ProfileRequest
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

	tests, ok := resolveTests(c, req.TestIDs)
	if !ok {
		return
	}

	profile := models.Profile{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Tests:       tests,
	}

	if err := db.Create(&profile).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_EXISTS",
					"message": "A profile with this name already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create profile",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    profile,
	})
}

// UpdateProfile handles PUT /api/profiles/:id - updates a bundle (admin only)
func UpdateProfile(c *gin.Context) {
	db := config.GetDB()

	var profile models.Profile
	if err := db.First(&profile, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROFILE_NOT_FOUND",
				"message": "Profile not found",
			},
		})
		return
	}

	var req ProfileRequest
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

	tests, ok := resolveTests(c, req.TestIDs)
	if !ok {
		return
	}

	profile.Name = req.Name
	profile.Price = req.Price
	profile.Description = req.Description
	if err := db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update profile",
			},
		})
		return
	}

	if err := db.Model(&profile).Association("Tests").Replace(tests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update profile tests",
			},
		})
		return
	}
	profile.Tests = tests

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// DeleteProfile handles DELETE /api/profiles/:id - deletes a bundle (admin only)
func DeleteProfile(c *gin.Context) {
	db := config.GetDB()

	var profile models.Profile
	if err := db.First(&profile, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROFILE_NOT_FOUND",
				"message": "Profile not found",
			},
		})
		return
	}

	if err := db.Delete(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete profile",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile has been deleted",
	})
}

// resolveTests loads the referenced catalog tests, rejecting unknown ids
func resolveTests(c *gin.Context, ids []uint) ([]models.LabTest, bool) {
	if len(ids) == 0 {
		return nil, true
	}

	db := config.GetDB()
	var tests []models.LabTest
	if err := db.Find(&tests, ids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to resolve tests",
			},
		})
		return nil, false
	}

	if len(tests) != len(ids) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_TEST",
				"message": "One or more referenced tests do not exist",
			},
		})
		return nil, false
	}

	return tests, true
}
