package v1

import (
	"net/http"
	"strconv"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type FormHistoryHandler struct {
	historyUC domain.FormHistoryUsecase
}

func NewFormHistoryHandler(r *gin.RouterGroup, historyUC domain.FormHistoryUsecase) {
	handler := &FormHistoryHandler{historyUC: historyUC}

	history := r.Group("/form-history")
	{
		history.GET("", handler.ListHistory)
		history.POST("", handler.RecordForm)
		history.GET("/export", handler.ExportHistory)
	}
}

// ListHistory godoc
// @Summary      List form history
// @Description  Returns recorded auto-fill attempts, newest first
// @Tags         form-history
// @Produce      json
// @Param        limit  query     int  false  "Return at most this many entries"
// @Success      200    {object}  response.Response{data=[]domain.FormHistory}
// @Failure      400    {object}  response.Response
// @Router       /form-history [get]
// @Security     BearerAuth
func (h *FormHistoryHandler) ListHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.Error(apperror.BadRequest("limit must be a non-negative integer"))
			return
		}
		limit = v
	}

	histories, err := h.historyUC.ListHistory(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Form history", histories)
}

// RecordForm godoc
// @Summary      Record form outcome
// @Description  Stores one auto-fill attempt and updates the user's statistics. The server assigns the timestamp.
// @Tags         form-history
// @Accept       json
// @Produce      json
// @Param        history  body      domain.RecordFormInput  true  "Form outcome"
// @Success      201      {object}  response.Response{data=domain.FormHistory}
// @Failure      400      {object}  response.Response
// @Router       /form-history [post]
// @Security     BearerAuth
func (h *FormHistoryHandler) RecordForm(c *gin.Context) {
	var req domain.RecordFormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	history, err := h.historyUC.RecordForm(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Form recorded", history)
}

// ExportHistory godoc
// @Summary      Export form history
// @Description  Downloads the form history as an Excel workbook
// @Tags         form-history
// @Produce      application/octet-stream
// @Success      200  {file}    binary
// @Router       /form-history/export [get]
// @Security     BearerAuth
func (h *FormHistoryHandler) ExportHistory(c *gin.Context) {
	data, filename, err := h.historyUC.ExportHistory(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
