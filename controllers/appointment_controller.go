package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/middleware"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
	"github.com/pathcare/pathlab-api/utils"
)

// BookAppointmentRequest represents the request body for booking an
// appointment. Any client-supplied total is a display hint only; the server
// recomputes the price from the catalog.
type BookAppointmentRequest struct {
	Name          string  `json:"name" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	StreetAddress string  `json:"streetAddress"`
	RoadNo        string  `json:"roadNo"`
	City          string  `json:"city"`
	Pincode       string  `json:"pincode"`
	State         string  `json:"state"`
	DoorToDoor    string  `json:"dtd"`
	TestIDs       []uint  `json:"tests"`
	ProfileIDs    []uint  `json:"profiles"`
	TotalPrice    float64 `json:"totalPrice"` // ignored, recomputed server-side
}

// MarkPaidRequest represents the optional transaction info attached when the
// owner confirms payment
type MarkPaidRequest struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
}

// UpdateStatusRequest represents the admin status update body
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentRequest represents the admin payment override body
type UpdatePaymentRequest struct {
	IsPaymentDone *bool `json:"isPaymentDone" binding:"required"`
}

// UpdateTestedRequest represents the admin tested update body
type UpdateTestedRequest struct {
	Tested string `json:"tested" binding:"required"`
}

// AdminAppointment is an appointment row with its owner resolved to a
// display-safe subset for the admin listing
type AdminAppointment struct {
	models.Appointment
	Owner *models.PublicUser `json:"user,omitempty"`
}

// BookAppointment handles POST /api/appointment/bookAppointment - creates an
// appointment owned by the authenticated caller. The caller's stored email
// overrides anything in the request body and the total is recomputed from
// authoritative catalog prices.
func BookAppointment(c *gin.Context) {
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

	var req BookAppointmentRequest
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

	date, err := parseAppointmentDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DATE",
				"message": "Date must be in RFC 3339 or YYYY-MM-DD format",
			},
		})
		return
	}

	dtd := req.DoorToDoor
	if dtd == "" {
		dtd = "no"
	}
	if dtd != "yes" && dtd != "no" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "dtd must be \"yes\" or \"no\"",
			},
		})
		return
	}

	tests, ok := resolveTests(c, req.TestIDs)
	if !ok {
		return
	}
	profiles, ok := resolveProfiles(c, req.ProfileIDs)
	if !ok {
		return
	}

	var total float64
	for _, t := range tests {
		total += t.Price
	}
	for _, p := range profiles {
		total += p.Price
	}

	appointment := models.Appointment{
		UserID:        user.ID,
		Name:          req.Name,
		Email:         user.Email, // registered email, never the client-supplied one
		Date:          date,
		StreetAddress: req.StreetAddress,
		RoadNo:        req.RoadNo,
		City:          req.City,
		Pincode:       req.Pincode,
		State:         req.State,
		DoorToDoor:    dtd,
		Tests:         tests,
		Profiles:      profiles,
		TotalPrice:    total,
		Status:        models.StatusPending,
		Tested:        models.TestedPending,
	}

	if err := db.Create(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to book appointment",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
		"message": "Appointment booked successfully",
	})
}

// MyAppointments handles GET /api/appointment/my-appointments - lists the
// caller's own appointments, newest date first
func MyAppointments(c *gin.Context) {
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
	var appointments []models.Appointment
	if err := db.Where("user_id = ?", userID).
		Preload("Tests").
		Preload("Profiles").
		Order("date DESC").
		Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch appointments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointments,
	})
}

// MarkPaid handles PUT /api/appointment/markPaid/:id - lets the appointment
// owner confirm payment. The flag only moves false to true; repeating the
// call is a no-op, not an error.
func MarkPaid(c *gin.Context) {
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
	var appointment models.Appointment
	if err := db.First(&appointment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

	if appointment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not own this appointment",
			},
		})
		return
	}

	var req MarkPaidRequest
	// Body is optional; ignore bind errors for an empty body
	_ = c.ShouldBindJSON(&req)

	updates := map[string]interface{}{"is_payment_done": true}
	if req.TransactionID != "" {
		updates["transaction_id"] = req.TransactionID
	}
	if req.OrderID != "" {
		updates["order_id"] = req.OrderID
	}

	if err := db.Model(&appointment).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update payment status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
		"message": "Payment status updated",
	})
}

// GetAllAppointments handles GET /api/appointment/getAllAppointments - admin
// listing of every appointment. Owner references are resolved to a
// display-safe subset best-effort: a missing owner never aborts the listing.
func GetAllAppointments(c *gin.Context) {
	db := config.GetDB()

	var appointments []models.Appointment
	if err := db.Preload("Tests").Preload("Profiles").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch appointments",
			},
		})
		return
	}

	result := make([]AdminAppointment, 0, len(appointments))
	for _, appointment := range appointments {
		row := AdminAppointment{Appointment: appointment}
		var owner models.User
		if err := db.First(&owner, appointment.UserID).Error; err != nil {
			// Keep the row; the owner reference may be stale
			log.Printf("Could not resolve owner %d for appointment %d: %v", appointment.UserID, appointment.ID, err)
		} else {
			pub := owner.Public()
			row.Owner = &pub
		}
		result = append(result, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// UpdateStatus handles PUT /api/appointment/updateStatus/:id (admin only)
func UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "status must be Pending, Confirmed or Cancelled",
			},
		})
		return
	}

	updateAppointmentField(c, "status", req.Status, "Status updated")
}

// UpdatePayment handles PUT /api/appointment/updatePayment/:id (admin only).
// This is the explicit admin override and the only path that may revert
// isPaymentDone to false.
func UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "isPaymentDone is required",
			},
		})
		return
	}

	updateAppointmentField(c, "is_payment_done", *req.IsPaymentDone, "Payment status updated")
}

// UpdateTested handles PUT /api/appointment/updateTested/:id (admin only)
func UpdateTested(c *gin.Context) {
	var req UpdateTestedRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidTested(req.Tested) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "tested must be Pending or Done",
			},
		})
		return
	}

	updateAppointmentField(c, "tested", req.Tested, "Tested status updated")
}

// UploadReport handles POST /api/appointment/uploadReport/:id - admin
// attaches a PDF report. The appointment must be paid, confirmed and tested;
// the filename is generated server-side and only recorded after the file is
// durably written.
func UploadReport(c *gin.Context) {
	db := config.GetDB()

	var appointment models.Appointment
	if err := db.First(&appointment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

	if !appointment.IsPaymentDone || appointment.Status != models.StatusConfirmed || appointment.Tested != models.TestedDone {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRECONDITION_FAILED",
				"message": "Report can only be uploaded once the appointment is paid, confirmed and tested",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("report")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No report file was uploaded",
			},
		})
		return
	}

	if err := utils.ValidateReportFile(fileHeader); err != nil {
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

	filename := utils.ReportFilename(appointment.ID)
	if err := services.GetReportStore().Save(fileHeader, filename); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store report file",
			},
		})
		return
	}

	// The filename is recorded only after the write succeeded
	if err := db.Model(&appointment).Update("report", filename).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record report filename",
			},
		})
		return
	}

	appointment.Report = filename
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
		"message": "Report uploaded successfully",
	})
}

// updateAppointmentField applies a single-field atomic update to the
// appointment named in the route
func updateAppointmentField(c *gin.Context, column string, value interface{}, message string) {
	db := config.GetDB()

	var appointment models.Appointment
	if err := db.First(&appointment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

	if err := db.Model(&appointment).Update(column, value).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update appointment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
		"message": message,
	})
}

// resolveProfiles loads the referenced bundles, rejecting unknown ids
func resolveProfiles(c *gin.Context, ids []uint) ([]models.Profile, bool) {
	if len(ids) == 0 {
		return nil, true
	}

	db := config.GetDB()
	var profiles []models.Profile
	if err := db.Find(&profiles, ids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to resolve profiles",
			},
		})
		return nil, false
	}

	if len(profiles) != len(ids) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_PROFILE",
				"message": "One or more referenced profiles do not exist",
			},
		})
		return nil, false
	}

	return profiles, true
}

// parseAppointmentDate accepts RFC 3339 timestamps or plain dates
func parseAppointmentDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
