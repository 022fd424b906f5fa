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

type customerRequest struct {
	Name           string `json:"name" binding:"required"`
	PhonePrimary   string `json:"phone_primary"`
	PhoneSecondary string `json:"phone_secondary"`
	Email          string `json:"email" binding:"omitempty,email"`
	Notes          string `json:"notes"`
}

// ListCustomers returns live customers; ?deleted=true switches to the trash.
func (h *Handler) ListCustomers(c *gin.Context) {
	q := h.DB.Model(&core.Customer{}).Order("name ASC")
	if c.Query("deleted") == "true" {
		q = q.Unscoped().Where("deleted_at IS NOT NULL")
	}
	if search := c.Query("q"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var customers []core.Customer
	if err := q.Find(&customers).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select customers: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(customers, int64(len(customers))))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var customer core.Customer
	err := h.DB.First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("customer %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select customer: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(customer))
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	customer := core.Customer{
		Name:           req.Name,
		PhonePrimary:   req.PhonePrimary,
		PhoneSecondary: req.PhoneSecondary,
		Email:          req.Email,
		Notes:          req.Notes,
	}
	if err := h.DB.Create(&customer).Error; err != nil {
		common.RespondError(c, fmt.Errorf("insert customer: %w", err))
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(customer))
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var customer core.Customer
	err := h.DB.First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("customer %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select customer: %w", err))
		return
	}

	customer.Name = req.Name
	customer.PhonePrimary = req.PhonePrimary
	customer.PhoneSecondary = req.PhoneSecondary
	customer.Email = req.Email
	customer.Notes = req.Notes
	if err := h.DB.Save(&customer).Error; err != nil {
		common.RespondError(c, fmt.Errorf("update customer: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(customer))
}

// DeleteCustomer moves a customer to the trash. ?permanent=true removes the
// row and every subscription under it for good.
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var customer core.Customer
	err := h.DB.Unscoped().First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.RespondError(c, fmt.Errorf("customer %d: %w", id, core.ErrNotFound))
		return
	}
	if err != nil {
		common.RespondError(c, fmt.Errorf("select customer: %w", err))
		return
	}

	if c.Query("permanent") == "true" {
		err = h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("customer_id = ?", id).Delete(&core.Subscription{}).Error; err != nil {
				return fmt.Errorf("delete subscriptions: %w", err)
			}
			if err := tx.Unscoped().Delete(&core.Customer{}, id).Error; err != nil {
				return fmt.Errorf("delete customer: %w", err)
			}
			return nil
		})
	} else {
		err = h.DB.Delete(&core.Customer{}, id).Error
	}
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": true}))
}

// RestoreCustomer brings a trashed customer back; its subscriptions rejoin
// every feed on the next read.
func (h *Handler) RestoreCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.DB.Unscoped().Model(&core.Customer{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		common.RespondError(c, fmt.Errorf("restore customer: %w", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		common.RespondError(c, fmt.Errorf("customer %d is not in the trash: %w", id, core.ErrNotFound))
		return
	}

	var customer core.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		common.RespondError(c, fmt.Errorf("select customer: %w", err))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(customer))
}
