package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
)

// LabTestRequest represents the request body for creating or updating a test
type LabTestRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required,gt=0"`
}

// ListLabTests handles GET /api/tests - lists the catalog, sorted by name (public)
func ListLabTests(c *gin.Context) {
	db := config.GetDB()

	var tests []models.LabTest
	if err := db.Order("name ASC").Find(&tests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch tests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tests,
	})
}

// CreateLabTest handles POST /api/tests - creates a catalog test (admin only)
func CreateLabTest(c *gin.Context) {
	var req LabTestRequest
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

	test := models.LabTest{Name: req.Name, Price: req.Price}

	db := config.GetDB()
	if err := db.Create(&test).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create test",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    test,
	})
}

// UpdateLabTest handles PUT /api/tests/:id - updates name/price (admin only)
func UpdateLabTest(c *gin.Context) {
	db := config.GetDB()

	var test models.LabTest
	if err := db.First(&test, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEST_NOT_FOUND",
				"message": "Test not found",
			},
		})
		return
	}

	var req LabTestRequest
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

	test.Name = req.Name
	test.Price = req.Price
	if err := db.Save(&test).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update test",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    test,
	})
}

// DeleteLabTest handles DELETE /api/tests/:id - deletes a test (admin only).
// Profiles referencing the test keep their remaining tests; there is no
// cascade into bundle prices.
func DeleteLabTest(c *gin.Context) {
	db := config.GetDB()

	var test models.LabTest
	if err := db.First(&test, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEST_NOT_FOUND",
				"message": "Test not found",
			},
		})
		return
	}

	if err := db.Delete(&test).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete test",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test has been deleted",
	})
}
