package api

import (
	"errors"
	"net/http"
	"strings"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/repository"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler holds the admin-facing dependencies.
type AdminHandler struct {
	adminService service.AdminService
	notices      notice.Store
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService, notices notice.Store) *AdminHandler {
	return &AdminHandler{adminService: adminService, notices: notices}
}

// --- DTOs ---

// EditAccountRequest is a partial update: omitted fields stay untouched.
// Sending illness as an empty string clears it to NULL.
type EditAccountRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Illness *string `json:"illness"`
}

// --- Handler Methods ---

// ListAccounts returns every active account.
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.adminService.ListAccounts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	resp := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, MapAccountToResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": resp})
}

// GetAccount fetches one account for the edit page.
func (h *AdminHandler) GetAccount(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid account id.")
		return
	}

	account, err := h.adminService.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load account")
		}
		return
	}
	c.JSON(http.StatusOK, MapAccountToResponse(account))
}

// UpdateAccount applies a partial profile edit and reports whether anything
// actually changed.
func (h *AdminHandler) UpdateAccount(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid account id.")
		return
	}

	var req EditAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	update := repository.ProfileUpdate{
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
	}
	if req.Illness != nil {
		if strings.TrimSpace(*req.Illness) == "" {
			update.ClearIllness = true
		} else {
			update.Illness = req.Illness
		}
	}

	changed, err := h.adminService.EditAccount(c.Request.Context(), id, update)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update account")
		}
		return
	}

	message := "No changes."
	level := domain.NoticeError
	if changed {
		message = "User updated."
		level = domain.NoticeSuccess
	}
	_ = h.notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{Level: level, Message: message})
	c.JSON(http.StatusOK, gin.H{"changed": changed, "message": message})
}

// DeactivateAccount soft-deletes an account; self-deactivation is blocked.
func (h *AdminHandler) DeactivateAccount(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid account id.")
		return
	}

	if err := h.adminService.DeactivateAccount(c.Request.Context(), id, principal.AccountID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDeactivation):
			h.pushNotice(c, principal, domain.NoticeError, "You cannot deactivate your own account.")
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAccountNotFound):
			h.pushNotice(c, principal, domain.NoticeError, "User not found.")
			abortWithError(c, http.StatusNotFound, "User not found.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to deactivate account")
		}
		return
	}

	h.pushNotice(c, principal, domain.NoticeSuccess, "User deactivated.")
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated."})
}

func (h *AdminHandler) pushNotice(c *gin.Context, principal *domain.Principal, level domain.NoticeLevel, message string) {
	_ = h.notices.Push(c.Request.Context(), principal.AccountID, domain.Notice{Level: level, Message: message})
}
