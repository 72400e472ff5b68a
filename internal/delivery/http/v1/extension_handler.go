package v1

import (
	"net/http"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ExtensionHandler struct {
	extensionUC domain.ExtensionUsecase
}

func NewExtensionHandler(r *gin.RouterGroup, extensionUC domain.ExtensionUsecase) {
	handler := &ExtensionHandler{extensionUC: extensionUC}

	r.GET("/extension-settings", handler.GetSettings)
	r.PUT("/extension-settings", handler.SaveSettings)
	r.GET("/extension-data", handler.GetExtensionData)
}

type SaveSettingsRequest struct {
	Settings domain.ExtensionSettingsPatch `json:"settings"`
}

// GetSettings godoc
// @Summary      Get extension settings
// @Tags         extension
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ExtensionSettings}
// @Failure      404  {object}  response.Response
// @Router       /extension-settings [get]
// @Security     BearerAuth
func (h *ExtensionHandler) GetSettings(c *gin.Context) {
	settings, err := h.extensionUC.GetSettings(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Extension settings", settings)
}

// SaveSettings godoc
// @Summary      Create or update extension settings
// @Tags         extension
// @Accept       json
// @Produce      json
// @Param        settings  body      SaveSettingsRequest  true  "Settings to change"
// @Success      200       {object}  response.Response{data=domain.ExtensionSettings}
// @Failure      400       {object}  response.Response
// @Router       /extension-settings [put]
// @Security     BearerAuth
func (h *ExtensionHandler) SaveSettings(c *gin.Context) {
	var req SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	settings, err := h.extensionUC.SaveSettings(c.Request.Context(), currentUserID(c), req.Settings)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Extension settings saved", settings)
}

// GetExtensionData godoc
// @Summary      Data for the browser extension
// @Description  Profile, settings and default resume in one response
// @Tags         extension
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ExtensionData}
// @Failure      404  {object}  response.Response
// @Router       /extension-data [get]
// @Security     BearerAuth
func (h *ExtensionHandler) GetExtensionData(c *gin.Context) {
	data, err := h.extensionUC.GetExtensionData(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Extension data", data)
}
