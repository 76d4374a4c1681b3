package api

import (
	"errors"
	"net/http"
	"strconv"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PatientHandler holds the patient-facing dependencies.
type PatientHandler struct {
	patientService service.PatientService
	notices        notice.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService service.PatientService, notices notice.Store) *PatientHandler {
	return &PatientHandler{patientService: patientService, notices: notices}
}

// --- DTOs ---

type SubmitIllnessRequest struct {
	Illness string `json:"illness" binding:"required"`
}

type AssignedExerciseResponse struct {
	Exercise     ExerciseResponse    `json:"exercise"`
	OrderNum     int                 `json:"orderNum"`
	Prescription domain.Prescription `json:"prescription"`
}

type ExerciseResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	IllustrationRef string `json:"illustrationRef,omitempty"`
	Timer           bool   `json:"timer"`
}

type DashboardResponse struct {
	Account   AccountResponse            `json:"account"`
	Treatment *TreatmentResponse         `json:"treatment,omitempty"`
	Exercises []AssignedExerciseResponse `json:"exercises"`
}

type TreatmentResponse struct {
	ID          uint   `json:"id"`
	NHSNumber   string `json:"nhsNumber"`
	Timing      string `json:"timing"`
	Progression string `json:"progression"`
	CreatedAt   string `json:"createdAt"`
}

// --- Handler Methods ---

// Dashboard renders the patient's current state: profile plus, when attended,
// the latest treatment and its ordered exercises.
func (h *PatientHandler) Dashboard(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	dashboard, err := h.patientService.GetDashboard(c.Request.Context(), principal.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		}
		return
	}

	resp := DashboardResponse{
		Account: MapAccountToResponse(dashboard.Account),
		// Empty slice, not null: "no exercises yet" is a normal state.
		Exercises: make([]AssignedExerciseResponse, 0, len(dashboard.Exercises)),
	}
	if dashboard.Treatment != nil {
		resp.Treatment = &TreatmentResponse{
			ID:          dashboard.Treatment.ID,
			NHSNumber:   dashboard.Treatment.NHSNumber,
			Timing:      dashboard.Treatment.Timing,
			Progression: dashboard.Treatment.Progression,
			CreatedAt:   dashboard.Treatment.CreatedAt.Format("2006-01-02"),
		}
	}
	for _, ex := range dashboard.Exercises {
		resp.Exercises = append(resp.Exercises, AssignedExerciseResponse{
			Exercise:     mapExerciseToResponse(ex.Exercise),
			OrderNum:     ex.OrderNum,
			Prescription: ex.Prescription,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitIllness records a new illness report, reopening the case.
func (h *PatientHandler) SubmitIllness(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	var req SubmitIllnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.patientService.SubmitIllness(c.Request.Context(), principal.AccountID, req.Illness); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyIllness):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAccountNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to submit illness")
		}
		return
	}

	_ = h.notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{
		Level:   domain.NoticeSuccess,
		Message: "Illness submitted, awaiting confirmation from your therapist.",
	})
	c.JSON(http.StatusOK, gin.H{"message": "Illness submitted."})
}

// GetExercise returns one catalog exercise for the illustration page.
func (h *PatientHandler) GetExercise(c *gin.Context) {
	exerciseID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise id.")
		return
	}

	exercise, err := h.patientService.GetExercise(c.Request.Context(), uint(exerciseID))
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load exercise")
		}
		return
	}
	c.JSON(http.StatusOK, mapExerciseToResponse(*exercise))
}

func mapExerciseToResponse(ex domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:              ex.ID,
		Name:            ex.Name,
		Description:     ex.Description,
		IllustrationRef: ex.IllustrationRef,
		Timer:           ex.Timer,
	}
}
