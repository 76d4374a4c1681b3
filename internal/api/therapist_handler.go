package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TherapistHandler holds the therapist-facing dependencies.
type TherapistHandler struct {
	therapistService service.TherapistService
	notices          notice.Store
}

// NewTherapistHandler creates a new TherapistHandler.
func NewTherapistHandler(therapistService service.TherapistService, notices notice.Store) *TherapistHandler {
	return &TherapistHandler{therapistService: therapistService, notices: notices}
}

// --- DTOs ---

type PrescriptionRequest struct {
	ExerciseID uint `json:"exerciseId" binding:"required"`
	Duration   int  `json:"duration"`
	Reps       int  `json:"reps"`
	PerWeek    int  `json:"perWeek"`
}

type AssignRequest struct {
	// Prescriptions in display/execution order. Emptiness is validated by
	// the service so it maps onto the workflow error, not a binding error.
	Prescriptions []PrescriptionRequest `json:"prescriptions"`
}

type PatientDetailResponse struct {
	Patient AccountResponse     `json:"patient"`
	Catalog []ExerciseResponse  `json:"catalog"`
	History []TreatmentResponse `json:"history"`
}

// --- Handler Methods ---

// SearchPatients filters the active patient roster for the dashboard.
func (h *TherapistHandler) SearchPatients(c *gin.Context) {
	query := c.Query("search")

	patients, err := h.therapistService.SearchPatients(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search patients")
		return
	}

	resp := make([]AccountResponse, 0, len(patients))
	for i := range patients {
		resp = append(resp, MapAccountToResponse(&patients[i]))
	}
	c.JSON(http.StatusOK, gin.H{"patients": resp})
}

// PatientDetail loads one patient with the exercise catalog and treatment history.
func (h *TherapistHandler) PatientDetail(c *gin.Context) {
	patientID, err := parseIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient id.")
		return
	}

	detail, err := h.therapistService.GetPatientDetail(c.Request.Context(), patientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, service.ErrPatientNotFound.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load patient")
		}
		return
	}

	resp := PatientDetailResponse{
		Patient: MapAccountToResponse(detail.Patient),
		Catalog: make([]ExerciseResponse, 0, len(detail.Catalog)),
		History: make([]TreatmentResponse, 0, len(detail.History)),
	}
	for _, ex := range detail.Catalog {
		resp.Catalog = append(resp.Catalog, mapExerciseToResponse(ex))
	}
	for _, t := range detail.History {
		resp.History = append(resp.History, TreatmentResponse{
			ID:          t.ID,
			NHSNumber:   t.NHSNumber,
			Timing:      t.Timing,
			Progression: t.Progression,
			CreatedAt:   t.CreatedAt.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Assign runs the exercise-assignment transition for one patient.
func (h *TherapistHandler) Assign(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	patientID, err := parseIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient id.")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	prescriptions := make([]service.PrescriptionInput, 0, len(req.Prescriptions))
	for _, p := range req.Prescriptions {
		prescriptions = append(prescriptions, service.PrescriptionInput{
			ExerciseID: p.ExerciseID,
			Duration:   p.Duration,
			Reps:       p.Reps,
			PerWeek:    p.PerWeek,
		})
	}

	treatment, err := h.therapistService.AssignExercises(c.Request.Context(), patientID, prescriptions)
	if err != nil {
		// Validation failures are echoed to the therapist as a flash notice
		// on top of the error response.
		switch {
		case errors.Is(err, service.ErrEmptySelection):
			h.pushError(c, principal, err.Error())
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidPrescription):
			h.pushError(c, principal, "Failed to assign exercises: "+err.Error())
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrNotAPatient):
			abortWithError(c, http.StatusNotFound, service.ErrPatientNotFound.Error())
		default:
			h.pushError(c, principal, "Failed to assign exercises.")
			abortWithError(c, http.StatusInternalServerError, "Failed to assign exercises")
		}
		return
	}

	message := fmt.Sprintf("Successfully assigned %d exercise(s)!", len(req.Prescriptions))
	_ = h.notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{
		Level:   domain.NoticeSuccess,
		Message: message,
	})
	c.JSON(http.StatusCreated, gin.H{
		"treatmentId": treatment.ID,
		"message":     message,
	})
}

func (h *TherapistHandler) pushError(c *gin.Context, principal *domain.Principal, message string) {
	_ = h.notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{
		Level:   domain.NoticeError,
		Message: message,
	})
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
