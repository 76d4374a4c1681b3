package api

import (
	"net/http"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notice"

	"github.com/gin-gonic/gin"
)

// NoticeHandler exposes the one-shot flash notice queue.
type NoticeHandler struct {
	notices notice.Store
}

// NewNoticeHandler creates a new NoticeHandler.
func NewNoticeHandler(notices notice.Store) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// TakePending returns the caller's queued notices and clears them. A second
// call returns an empty list until something new is queued.
func (h *NoticeHandler) TakePending(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify session.")
		return
	}

	notices, err := h.notices.Take(c.Request.Context(), principal.AccountID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch notices")
		return
	}
	if notices == nil {
		notices = []domain.Notice{}
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}
