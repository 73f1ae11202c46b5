package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/kdduha/exam-grader/backend/internal/models"
)

type gradeService interface {
	Grade(ctx context.Context, req *models.GradeRequest) (*models.GradeResponse, error)
}

type GradeHandler struct {
	service      gradeService
	maxBodyBytes int64
}

func NewGradeHandler(service gradeService, maxBodyBytes int64) *GradeHandler {
	return &GradeHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

// Grade godoc
// @Summary Grade a handwritten answer
// @Description Grades the student's answer image, optionally against a reference answer image, rubric and context. Images are base64 strings, a data URL header is accepted.
// @Tags grade
// @Accept json
// @Produce json
// @Param request body models.GradeRequest true "Grade request"
// @Success 200 {object} models.GradeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /grade [post]
func (h *GradeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read body: %s", err))
		return
	}

	var req models.GradeRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}

	resp, err := h.service.Grade(r.Context(), &req)
	if err != nil {
		ge := models.AsGradeError(err)
		writeError(w, ge.StatusCode(), ge.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, models.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
