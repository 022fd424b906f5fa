package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/utils"
	"renewtrack.com/renewtrack/web/common"
	"renewtrack.com/renewtrack/web/middlewares"
)

type renewRequest struct {
	SubscriptionID uint `json:"subscription_id" binding:"required"`
}

// ListRenewals returns the worklist: everything due within the window,
// expired, or flagged for review.
func (h *Handler) ListRenewals(c *gin.Context) {
	today := utils.Today()
	cutoff := utils.AddDays(today, core.DueSoonWindowDays)

	var subs []core.Subscription
	err := h.DB.Preload("Customer").Preload("ServiceType").
		Joins("JOIN customers ON customers.id = subscriptions.customer_id AND customers.deleted_at IS NULL").
		Where("subscriptions.end_date <= ? OR subscriptions.status = ?", cutoff, core.StatusReview).
		Order("subscriptions.end_date ASC").
		Find(&subs).Error
	if err != nil {
		common.RespondError(c, fmt.Errorf("select renewals: %w", err))
		return
	}

	out := utils.Map(subs, func(s core.Subscription) core.Subscription {
		return presentSubscription(s, today)
	})
	c.JSON(http.StatusOK, common.NewSearchResponse(out, int64(len(out))))
}

// Renew extends a subscription by a year from whichever is later, its end
// date or today.
func (h *Handler) Renew(c *gin.Context) {
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	result, err := core.Renew(h.DB, req.SubscriptionID, middlewares.Username(c), utils.Today())
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			_ = h.Ops.Error(fmt.Sprintf("renewal of subscription %d exhausted retries", req.SubscriptionID))
		}
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}
