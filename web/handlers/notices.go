package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/web/common"
)

type issueNoticeRequest struct {
	SubscriptionID uint `json:"subscription_id" binding:"required"`
}

func (h *Handler) ListNotices(c *gin.Context) {
	notices, err := core.ListNotices(h.DB)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(notices, int64(len(notices))))
}

func (h *Handler) IssueNotice(c *gin.Context) {
	var req issueNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	notice, err := core.IssueNotice(h.DB, req.SubscriptionID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{
		"notice": notice,
		"url":    core.NoticeURL(notice.UUID),
	}))
}

// GetNotice serves the shareable snapshot. Unauthenticated: the token is the
// only credential a recipient holds.
func (h *Handler) GetNotice(c *gin.Context) {
	notice, err := core.GetNotice(h.DB, c.Param("uuid"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(notice))
}
