package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication dependencies.
type AuthHandler struct {
	authService service.AuthService
	notices     notice.Store
	basePath    string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, notices notice.Store, basePath string) *AuthHandler {
	return &AuthHandler{authService: authService, notices: notices, basePath: basePath}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
	NHSNumber   string `json:"nhsNumber" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname" binding:"required"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"` // YYYY-MM-DD
	Address     string `json:"address"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// AccountResponse excludes sensitive info like password hash
type AccountResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	NHSNumber string      `json:"nhsNumber"`
	Name      string      `json:"name"`
	Surname   string      `json:"surname"`
	Email     string      `json:"email,omitempty"`
	Illness   *string     `json:"illness,omitempty"`
	Attended  bool        `json:"attended"`
	CreatedAt time.Time   `json:"createdAt"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
	// DashboardPath tells the client where to land for the account's role.
	DashboardPath string `json:"dashboardPath"`
}

// --- Handler Methods ---

// Register creates a new patient or therapist account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		abortWithError(c, http.StatusBadRequest, service.ErrInvalidRole.Error())
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "dateOfBirth must be formatted YYYY-MM-DD")
		return
	}

	account, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        role,
		NHSNumber:   req.NHSNumber,
		Name:        req.Name,
		Surname:     req.Surname,
		DateOfBirth: dob,
		Address:     req.Address,
		Email:       req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateIdentity):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidRole):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrHashingFailed):
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account": MapAccountToResponse(account),
		"message": "Registered successfully. Please log in.",
	})
}

// Login authenticates and returns the session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, account, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrTokenGeneration):
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	// Greeting is queued as a flash notice for the dashboard render.
	_ = h.notices.Push(c.Request.Context(), account.ID, domain.Notice{
		Level:   domain.NoticeSuccess,
		Message: fmt.Sprintf("Welcome back, %s!", account.Username),
	})

	c.JSON(http.StatusOK, LoginResponse{
		Token:         token,
		Account:       MapAccountToResponse(account),
		DashboardPath: h.basePath + account.Role.DashboardPath(),
	})
}

// Logout ends the session. Tokens are stateless, so the only server-side
// state to drop is any pending flash notices.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}
	_, _ = h.notices.Take(c.Request.Context(), principal.AccountID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

// MapAccountToResponse converts a domain Account to its response DTO.
// Crucially excludes PasswordHash.
func MapAccountToResponse(account *domain.Account) AccountResponse {
	if account == nil {
		return AccountResponse{}
	}
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Role:      account.Role,
		NHSNumber: account.NHSNumber,
		Name:      account.Name,
		Surname:   account.Surname,
		Email:     account.Email,
		Illness:   account.Illness,
		Attended:  account.Attended,
		CreatedAt: account.CreatedAt,
	}
}
