package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/delivery/http/request"
	"github.com/user/hotel-scraper/internal/delivery/http/response"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/usecase"
)

// CoverageReader reports the stay-date coverage of today's retrieval batch.
type CoverageReader interface {
	Coverage(ctx context.Context, city string, year int, month time.Month) (entity.DateCoverage, error)
}

type Handler struct {
	jobManager usecase.JobManager
	coverage   CoverageReader
	logger     *zap.Logger
}

func NewHandler(jobManager usecase.JobManager, coverage CoverageReader, logger *zap.Logger) *Handler {
	return &Handler{
		jobManager: jobManager,
		coverage:   coverage,
		logger:     logger,
	}
}

func (h *Handler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.jobManager.Submit(r.Context(), req.Job(), req.Force)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidJob):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, usecase.ErrJobRecentlySubmitted):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to submit job", zap.String("city", req.City), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitJobResponse{
		Status:  "success",
		Message: "Job queued for scraping",
		JobID:   jobID,
	})
}

func (h *Handler) HandleGetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		h.writeJSONError(w, "Job id is required", http.StatusBadRequest)
		return
	}

	status, err := h.jobManager.GetStatus(r.Context(), jobID)
	if err != nil {
		h.logger.Error("failed to get job status", zap.String("job_id", jobID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if status.State == entity.JobStateUnknown {
		h.writeJSONError(w, "Job not found or already expired", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.JobStatusResponse{
		JobID:     status.ID,
		State:     string(status.State),
		Error:     status.Error,
		Rows:      status.Rows,
		UpdatedAt: status.UpdatedAt,
		QueueSize: status.QueueSize,
	})
}

func (h *Handler) HandleGetCoverage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		h.writeJSONError(w, "city query parameter is required", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1 {
		h.writeJSONError(w, "year query parameter must be a positive integer", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.writeJSONError(w, "month query parameter must be between 1 and 12", http.StatusBadRequest)
		return
	}

	cov, err := h.coverage.Coverage(r.Context(), city, year, time.Month(month))
	if err != nil {
		h.logger.Error("failed to compute coverage", zap.String("city", city), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	missing := cov.Missing
	if missing == nil {
		missing = []string{}
	}
	h.writeJSON(w, http.StatusOK, response.CoverageResponse{
		City:     cov.City,
		Month:    cov.Month,
		AsOf:     cov.AsOf,
		Expected: cov.Expected,
		Actual:   cov.Actual,
		Complete: cov.Complete(),
		Missing:  missing,
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
