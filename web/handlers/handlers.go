package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/infrastructure/communication"
	"renewtrack.com/renewtrack/web/common"
)

// Handler bundles the collaborators every endpoint needs. One instance is
// built at startup and shared; it holds no per-request state.
type Handler struct {
	DB         *gorm.DB
	Mailer     core.Mailer
	Ops        *communication.Slack
	AdminEmail string
	Secret     []byte
}

func New(db *gorm.DB, mailer core.Mailer, ops *communication.Slack, adminEmail string, secret []byte) *Handler {
	return &Handler{
		DB:         db,
		Mailer:     mailer,
		Ops:        ops,
		AdminEmail: adminEmail,
		Secret:     secret,
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid id"))
		return 0, false
	}
	return uint(id), true
}
