package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/utils"
	"renewtrack.com/renewtrack/web/common"
)

type markReadRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) ListNotifications(c *gin.Context) {
	feed, err := core.ListNotifications(h.DB, utils.Today())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(feed))
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	if err := core.MarkRead(h.DB, req.ID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"read": true}))
}

// SendDigestEmail pushes the attention-window digest to the operator inbox.
// Explicitly triggered, never scheduled.
func (h *Handler) SendDigestEmail(c *gin.Context) {
	result, err := core.SendDigest(c.Request.Context(), h.DB, h.Mailer, h.AdminEmail, utils.Today())
	if err != nil {
		if errors.Is(err, core.ErrMailProvider) {
			_ = h.Ops.Error(fmt.Sprintf("digest email failed: %v", err))
		}
		common.RespondError(c, err)
		return
	}

	if result.Sent {
		_ = h.Ops.Info(fmt.Sprintf("digest sent to %s: %d expired, %d due soon",
			result.Recipient, result.ExpiredCount, result.DueSoonCount))
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}
