package v1

import (
	"net/http"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsUC domain.StatisticsUsecase
}

func NewStatisticsHandler(r *gin.RouterGroup, statsUC domain.StatisticsUsecase) {
	handler := &StatisticsHandler{statsUC: statsUC}
	r.GET("/statistics", handler.GetStatistics)
}

// GetStatistics godoc
// @Summary      Get statistics
// @Description  Running counters derived from recorded form outcomes
// @Tags         statistics
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Statistics}
// @Failure      404  {object}  response.Response
// @Router       /statistics [get]
// @Security     BearerAuth
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	stats, err := h.statsUC.GetStatistics(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Statistics", stats)
}
