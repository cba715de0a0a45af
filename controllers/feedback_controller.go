package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
)

// FeedbackRequest represents the request body for submitting feedback
type FeedbackRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Feedback string `json:"feedback" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
}

// SubmitFeedback handles POST /api/feedback - stores a rating and review (public)
func SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
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

	feedback := models.Feedback{
		Name:     req.Name,
		Email:    req.Email,
		Feedback: req.Feedback,
		Rating:   req.Rating,
	}

	db := config.GetDB()
	if err := db.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save feedback",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Thank you for your feedback",
	})
}

// GetFeedbackSummary handles GET /api/feedback - returns aggregate stats and
// the four most recent reviews for the landing page (public)
func GetFeedbackSummary(c *gin.Context) {
	db := config.GetDB()

	var count int64
	if err := db.Model(&models.Feedback{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch feedback stats",
			},
		})
		return
	}

	var avgRating float64
	if count > 0 {
		if err := db.Model(&models.Feedback{}).
			Select("AVG(rating)").
			Scan(&avgRating).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch feedback stats",
				},
			})
			return
		}
	}

	var reviews []models.Feedback
	if err := db.Order("created_at DESC").Limit(4).Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch reviews",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats": gin.H{
				"count":     count,
				"avgRating": avgRating,
			},
			"reviews": reviews,
		},
	})
}

// GetAllFeedback handles GET /api/feedback/all - full review list, newest
// first (public)
func GetAllFeedback(c *gin.Context) {
	db := config.GetDB()

	var reviews []models.Feedback
	if err := db.Order("created_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch reviews",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
	})
}
