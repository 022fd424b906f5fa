package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/utils"
	"renewtrack.com/renewtrack/web/common"
)

type subscriptionRequest struct {
	CustomerID      uint            `json:"customer_id" binding:"required"`
	ServiceTypeID   uint            `json:"service_type_id" binding:"required"`
	DomainOrService string          `json:"domain_or_service" binding:"required"`
	StartDate       common.DateOnly `json:"start_date"`
	EndDate         common.DateOnly `json:"end_date"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	Status          core.Status     `json:"status"`
	Notes           string          `json:"notes"`
}

// presentSubscription swaps the persisted status for the effective one so
// clients never see a stale derived value.
func presentSubscription(s core.Subscription, today time.Time) core.Subscription {
	s.Status = s.EffectiveStatus(today)
	return s
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	today := utils.Today()

	q := h.DB.Preload("Customer").Preload("ServiceType").
		Joins("JOIN customers ON customers.id = subscriptions.customer_id AND customers.deleted_at IS NULL").
		Order("subscriptions.end_date ASC")
	if customerID := c.Query("customer_id"); customerID != "" {
		q = q.Where("subscriptions.customer_id = ?", customerID)
	}

	var subs []core.Subscription
	if err := q.Find(&subs).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select subscriptions: %w", err))
		return
	}

	out := utils.Map(subs, func(s core.Subscription) core.Subscription {
		return presentSubscription(s, today)
	})
	if status := core.Status(c.Query("status")); status != "" {
		out = utils.Filter(out, func(s core.Subscription) bool {
			return s.Status == status
		})
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(out, int64(len(out))))
}

func (h *Handler) GetSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var sub core.Subscription
	err := h.DB.Preload("Customer").Preload("ServiceType").First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("subscription %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select subscription: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(presentSubscription(sub, utils.Today())))
}

func (h *Handler) CreateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if req.EndDate.IsZero() {
		common.RespondError(c, fmt.Errorf("end_date is required: %w", core.ErrValidation))
		return
	}
	if err := h.checkSubscriptionRefs(req.CustomerID, req.ServiceTypeID); err != nil {
		common.RespondError(c, err)
		return
	}

	today := utils.Today()
	startDate := utils.TruncateToDay(req.StartDate.Time)
	if req.StartDate.IsZero() {
		startDate = today
	}
	endDate := utils.TruncateToDay(req.EndDate.Time)

	status := core.DeriveStatus(endDate, today)
	if req.Status == core.StatusReview {
		status = core.StatusReview
	}
	currency := req.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}

	sub := core.Subscription{
		CustomerID:      req.CustomerID,
		ServiceTypeID:   req.ServiceTypeID,
		DomainOrService: req.DomainOrService,
		StartDate:       startDate,
		EndDate:         endDate,
		Price:           req.Price,
		Currency:        currency,
		Status:          status,
		Notes:           req.Notes,
		DataVersion:     1,
	}
	if err := h.DB.Create(&sub).Error; err != nil {
		common.RespondError(c, fmt.Errorf("insert subscription: %w", err))
		return
	}

	if err := h.DB.Preload("Customer").Preload("ServiceType").First(&sub, sub.ID).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select subscription: %w", err))
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(presentSubscription(sub, today)))
}

// UpdateSubscription rewrites the editable fields. A submitted review status
// sticks; any other submitted status is ignored and re-derived from the new
// end date.
func (h *Handler) UpdateSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if req.EndDate.IsZero() {
		common.RespondError(c, fmt.Errorf("end_date is required: %w", core.ErrValidation))
		return
	}
	if err := h.checkSubscriptionRefs(req.CustomerID, req.ServiceTypeID); err != nil {
		common.RespondError(c, err)
		return
	}

	var sub core.Subscription
	err := h.DB.First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("subscription %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select subscription: %w", err))
		return
	}

	today := utils.Today()
	sub.CustomerID = req.CustomerID
	sub.ServiceTypeID = req.ServiceTypeID
	sub.DomainOrService = req.DomainOrService
	if !req.StartDate.IsZero() {
		sub.StartDate = utils.TruncateToDay(req.StartDate.Time)
	}
	sub.EndDate = utils.TruncateToDay(req.EndDate.Time)
	sub.Price = req.Price
	if req.Currency != "" {
		sub.Currency = req.Currency
	}
	sub.Notes = req.Notes
	if req.Status == core.StatusReview {
		sub.Status = core.StatusReview
	} else {
		sub.Status = core.DeriveStatus(sub.EndDate, today)
	}
	sub.DataVersion++

	if err := h.DB.Save(&sub).Error; err != nil {
		common.RespondError(c, fmt.Errorf("update subscription: %w", err))
		return
	}

	if err := h.DB.Preload("Customer").Preload("ServiceType").First(&sub, sub.ID).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select subscription: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(presentSubscription(sub, today)))
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.DB.Delete(&core.Subscription{}, id)
	if res.Error != nil {
		common.RespondError(c, fmt.Errorf("delete subscription: %w", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		common.RespondError(c, fmt.Errorf("subscription %d: %w", id, core.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": true}))
}

func (h *Handler) checkSubscriptionRefs(customerID, serviceTypeID uint) error {
	var count int64
	if err := h.DB.Model(&core.Customer{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
		return fmt.Errorf("select customer: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("customer %d does not exist: %w", customerID, core.ErrValidation)
	}
	if err := h.DB.Model(&core.ServiceType{}).Where("id = ?", serviceTypeID).Count(&count).Error; err != nil {
		return fmt.Errorf("select service type: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("service type %d does not exist: %w", serviceTypeID, core.ErrValidation)
	}
	return nil
}
