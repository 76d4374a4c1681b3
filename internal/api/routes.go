package api

import (
	"net/http"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler under the configured base path.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	basePath string,
	authService service.AuthService,
	patientService service.PatientService,
	therapistService service.TherapistService,
	adminService service.AdminService,
	notices notice.Store,
) {
	authHandler := NewAuthHandler(authService, notices, basePath)
	patientHandler := NewPatientHandler(patientService, notices)
	therapistHandler := NewTherapistHandler(therapistService, notices)
	adminHandler := NewAdminHandler(adminService, notices)
	noticeHandler := NewNoticeHandler(notices)

	authMiddleware := AuthMiddleware(jwtSecret)
	router.Use(RequestIDMiddleware())

	// Deployments behind a shared reverse proxy mount everything under a
	// fixed prefix; an empty base path serves from the root.
	root := router.Group(basePath)

	root.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := root.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authMiddleware, authHandler.Logout)
	}

	protected := root.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			principal, err := getPrincipalFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get principal from token")
				return
			}
			c.JSON(http.StatusOK, principal)
		})

		// One-shot flash notices: read once, cleared on read.
		protected.GET("/notices", noticeHandler.TakePending)

		// --- Patient Routes ---
		patientGroup := protected.Group("/patient")
		patientGroup.Use(RoleMiddleware(notices, domain.RolePatient))
		{
			patientGroup.GET("/dashboard", patientHandler.Dashboard)
			patientGroup.POST("/illness", patientHandler.SubmitIllness)
			patientGroup.GET("/exercises/:id", patientHandler.GetExercise)
		}

		// --- Therapist Routes ---
		therapistGroup := protected.Group("/therapist")
		therapistGroup.Use(RoleMiddleware(notices, domain.RoleTherapist))
		{
			therapistGroup.GET("/patients", therapistHandler.SearchPatients)
			therapistGroup.GET("/patients/:id", therapistHandler.PatientDetail)
			therapistGroup.POST("/patients/:id/assign", therapistHandler.Assign)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(notices, domain.RoleAdmin))
		{
			adminGroup.GET("/accounts", adminHandler.ListAccounts)
			adminGroup.GET("/accounts/:id", adminHandler.GetAccount)
			adminGroup.PUT("/accounts/:id", adminHandler.UpdateAccount)
			adminGroup.POST("/accounts/:id/deactivate", adminHandler.DeactivateAccount)
		}
	}
}
