package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/infrastructure/reporting"
	"renewtrack.com/renewtrack/utils"
	"renewtrack.com/renewtrack/web/common"
)

type reportRequest struct {
	Password string `json:"password" binding:"required"`
}

// Report rebuilds the full revenue rollup. The caller re-verifies their
// password on every request; a bearer token alone does not open this data.
func (h *Handler) Report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if !h.verifyCallerPassword(c, req.Password) {
		return
	}

	report, err := core.BuildReport(h.DB, utils.Today())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(report))
}

// ExportReport streams the rollup as an xlsx workbook. Password rides in the
// X-Report-Password header because spreadsheet downloads are GETs.
func (h *Handler) ExportReport(c *gin.Context) {
	if !h.verifyCallerPassword(c, c.GetHeader("X-Report-Password")) {
		return
	}

	today := utils.Today()
	report, err := core.BuildReport(h.DB, today)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	workbook, err := reporting.BuildReportWorkbook(report)
	if err != nil {
		common.RespondError(c, fmt.Errorf("build workbook: %w", err))
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("renewtrack-report-%s.xlsx", utils.FormatDate(today))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := core.BuildDashboard(h.DB, utils.Today())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(dashboard))
}
