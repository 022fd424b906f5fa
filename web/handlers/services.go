package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/web/common"
)

type serviceTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) ListServices(c *gin.Context) {
	var services []core.ServiceType
	if err := h.DB.Order("name ASC").Find(&services).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select service types: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(services, int64(len(services))))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req serviceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	service := core.ServiceType{Name: req.Name, IsActive: true}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&service).Error; err != nil {
		common.RespondError(c, fmt.Errorf("insert service type: %w", err))
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(service))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req serviceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var service core.ServiceType
	err := h.DB.First(&service, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("service type %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select service type: %w", err))
		return
	}

	service.Name = req.Name
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&service).Error; err != nil {
		common.RespondError(c, fmt.Errorf("update service type: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(service))
}

// DeleteService refuses while subscriptions still reference the type;
// disable it instead.
func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var count int64
	if err := h.DB.Model(&core.Subscription{}).Where("service_type_id = ?", id).Count(&count).Error; err != nil {
		common.RespondError(c, fmt.Errorf("count subscriptions: %w", err))
		return
	}
	if count > 0 {
		common.RespondError(c, fmt.Errorf("service type is used by %d subscriptions: %w", count, core.ErrValidation))
		return
	}

	res := h.DB.Delete(&core.ServiceType{}, id)
	if res.Error != nil {
		common.RespondError(c, fmt.Errorf("delete service type: %w", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		common.RespondError(c, fmt.Errorf("service type %d: %w", id, core.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": true}))
}
