package main

import (
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/controllers"
	"github.com/pathcare/pathlab-api/middleware"
)

// SetupRouter builds the gin engine with all API routes registered
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// The API serves browser clients from any origin
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders:    []string{"Content-Type", "Authorization", "x-access-token"},
	}))

	router.GET("/health", healthCheck)

	// Avatars are public static assets; reports are only served through the
	// authorized download endpoint
	router.Static("/uploads/profiles", filepath.Join(cfg.UploadDir, "profiles"))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/Register", controllers.Register)
			auth.POST("/Login", controllers.Login)
		}

		reset := api.Group("/password-reset")
		{
			reset.POST("", controllers.RequestPasswordReset)
			reset.GET("/:id/:token", controllers.VerifyPasswordResetLink)
			reset.POST("/:id/:token", controllers.SetNewPassword)
		}

		profile := api.Group("/profile", middleware.RequireAuth())
		{
			profile.PUT("/upload", controllers.UploadAvatar)
			profile.DELETE("/remove", controllers.RemoveAvatar)
		}

		tests := api.Group("/tests")
		{
			tests.GET("", controllers.ListLabTests)
			tests.POST("", middleware.RequireAdmin(), controllers.CreateLabTest)
			tests.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateLabTest)
			tests.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteLabTest)
		}

		profiles := api.Group("/profiles")
		{
			profiles.GET("", controllers.ListProfiles)
			profiles.POST("", middleware.RequireAdmin(), controllers.CreateProfile)
			profiles.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateProfile)
			profiles.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteProfile)
		}

		appointment := api.Group("/appointment")
		{
			appointment.POST("/bookAppointment", middleware.RequireAuth(), controllers.BookAppointment)
			appointment.GET("/my-appointments", middleware.RequireAuth(), controllers.MyAppointments)
			appointment.PUT("/markPaid/:id", middleware.RequireAuth(), controllers.MarkPaid)
			appointment.GET("/getAllAppointments", middleware.RequireAdmin(), controllers.GetAllAppointments)
			appointment.PUT("/updateStatus/:id", middleware.RequireAdmin(), controllers.UpdateStatus)
			appointment.PUT("/updatePayment/:id", middleware.RequireAdmin(), controllers.UpdatePayment)
			appointment.PUT("/updateTested/:id", middleware.RequireAdmin(), controllers.UpdateTested)
			appointment.POST("/uploadReport/:id", middleware.RequireAdmin(), controllers.UploadReport)
		}

		checkout := api.Group("/checkout")
		{
			checkout.POST("/create-order", middleware.RequireAuth(), controllers.CreateOrder)
			checkout.POST("/verification/user", controllers.ReportClientPayment)
			checkout.POST("/verification", controllers.PaymentWebhook)
		}

		api.GET("/reports/:filename", middleware.RequireAuth(), controllers.DownloadReport)

		feedback := api.Group("/feedback")
		{
			feedback.POST("", controllers.SubmitFeedback)
			feedback.GET("", controllers.GetFeedbackSummary)
			feedback.GET("/all", controllers.GetAllFeedback)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", controllers.SubmitContact)
			contact.GET("", middleware.RequireAdmin(), controllers.GetContacts)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PathLab API is running",
	})
}
