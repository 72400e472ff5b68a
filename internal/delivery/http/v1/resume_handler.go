package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/logger"
	"go-autofill-backend/pkg/metrics"
	"go-autofill-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC    domain.ResumeUsecase
	limiter     *security.UploadLimiter
	securityLog *security.SecurityLogger
	maxBytes    int64
}

func NewResumeHandler(r *gin.RouterGroup, resumeUC domain.ResumeUsecase, limiter *security.UploadLimiter, securityLog *security.SecurityLogger, maxBytes int64) {
	handler := &ResumeHandler{
		resumeUC:    resumeUC,
		limiter:     limiter,
		securityLog: securityLog,
		maxBytes:    maxBytes,
	}

	resumes := r.Group("/resumes")
	{
		resumes.GET("", handler.ListResumes)
		resumes.GET("/default", handler.GetDefaultResume)
		resumes.POST("", handler.UploadResume)
		resumes.DELETE("/:id", handler.DeleteResume)
		resumes.PUT("/:id/default", handler.SetDefaultResume)
	}
}

// ListResumes godoc
// @Summary      List resumes
// @Description  Returns the user's resumes, newest first
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Router       /resumes [get]
// @Security     BearerAuth
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	resumes, err := h.resumeUC.ListResumes(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resumes", resumes)
}

// GetDefaultResume godoc
// @Summary      Get default resume
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Failure      404  {object}  response.Response
// @Router       /resumes/default [get]
// @Security     BearerAuth
func (h *ResumeHandler) GetDefaultResume(c *gin.Context) {
	resume, err := h.resumeUC.GetDefaultResume(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	if resume == nil {
		c.Error(apperror.NotFound("No default resume"))
		return
	}
	response.Success(c, http.StatusOK, "Default resume", resume)
}

// UploadResume godoc
// @Summary      Upload resume
// @Description  Stores a base64 encoded PDF, DOC, DOCX or TXT resume. Uploads are rate limited per IP and per user.
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Param        resume  body      domain.UploadResumeInput  true  "Resume file"
// @Success      201     {object}  response.Response{data=domain.Resume}
// @Failure      400     {object}  response.Response
// @Failure      413     {object}  response.Response
// @Failure      429     {object}  response.Response
// @Router       /resumes [post]
// @Security     BearerAuth
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	userID := currentUserID(c)

	allowed, retryAfter, err := h.limiter.AllowUpload(c.Request.Context(), c.ClientIP(), userID)
	if err != nil {
		logger.Log.Error("Upload limiter failed", slog.Any("error", err))
		c.Error(apperror.Unavailable(err))
		return
	}
	if !allowed {
		metrics.ObserveResumeUpload("rate_limited")
		h.securityLog.LogUploadRejected(c.Request.Context(), userID, "", "rate_limited")
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Error(apperror.TooManyRequests("Upload limit reached. Please try again later."))
		return
	}

	// Base64 inflates by 4/3; leave headroom for the JSON envelope.
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes*4/3+64*1024)
	}

	var req domain.UploadResumeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			metrics.ObserveResumeUpload("rejected")
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "File too large", err))
			return
		}
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	resume, err := h.resumeUC.UploadResume(c.Request.Context(), userID, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Resume uploaded", resume)
}

// DeleteResume godoc
// @Summary      Delete resume
// @Tags         resumes
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id} [delete]
// @Security     BearerAuth
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	if err := h.resumeUC.DeleteResume(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume deleted", nil)
}

// SetDefaultResume godoc
// @Summary      Set default resume
// @Description  Marks the resume as the user's default and clears the previous one
// @Tags         resumes
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id}/default [put]
// @Security     BearerAuth
func (h *ResumeHandler) SetDefaultResume(c *gin.Context) {
	if err := h.resumeUC.SetDefaultResume(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Default resume updated", nil)
}
