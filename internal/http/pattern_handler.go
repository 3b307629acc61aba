package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/availability"
)

type patternService interface {
	CreatePattern(ctx context.Context, params application.CreatePatternParams) (availability.RecurrencePattern, error)
	CreateSpecificDate(ctx context.Context, params application.CreateSpecificDateParams) (availability.SpecificDate, error)
	ListPatterns(ctx context.Context, tutorID string) ([]availability.RecurrencePattern, error)
	DeletePattern(ctx context.Context, tutorID, patternID string) error
	DeleteSpecificDate(ctx context.Context, tutorID, recordID string) error
}

// PatternHandler manages stored availability records.
type PatternHandler struct {
	service   patternService
	responder responder
}

func NewPatternHandler(service patternService, logger *slog.Logger) *PatternHandler {
	return &PatternHandler{service: service, responder: newResponder(logger)}
}

// CreatePattern handles POST /tutors/{id}/patterns. The body is decoded as a
// loose object so normalization can report malformed fields individually.
func (h *PatternHandler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	pattern, err := h.service.CreatePattern(r.Context(), application.CreatePatternParams{
		TutorID:    tutorID,
		Raw:        raw,
		Convention: parseConvention(r.URL.Query().Get("convention")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPatternDTO(pattern))
}

// ListPatterns handles GET /tutors/{id}/patterns.
func (h *PatternHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	patterns, err := h.service.ListPatterns(r.Context(), tutorID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]patternDTO, 0, len(patterns))
	for _, pattern := range patterns {
		out = append(out, toPatternDTO(pattern))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPatternsResponse{Patterns: out})
}

// DeletePattern handles DELETE /tutors/{id}/patterns/{patternID}.
func (h *PatternHandler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	patternID := strings.TrimSpace(r.PathValue("patternID"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}
	if patternID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	if err := h.service.DeletePattern(r.Context(), tutorID, patternID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CreateSpecificDate handles POST /tutors/{id}/specific-dates.
func (h *PatternHandler) CreateSpecificDate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, err := h.service.CreateSpecificDate(r.Context(), application.CreateSpecificDateParams{
		TutorID:    tutorID,
		Raw:        raw,
		Convention: parseConvention(r.URL.Query().Get("convention")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toSpecificDateDTO(record))
}

// DeleteSpecificDate handles DELETE /tutors/{id}/specific-dates/{recordID}.
func (h *PatternHandler) DeleteSpecificDate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	recordID := strings.TrimSpace(r.PathValue("recordID"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}
	if recordID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	if err := h.service.DeleteSpecificDate(r.Context(), tutorID, recordID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type listPatternsResponse struct {
	Patterns []patternDTO `json:"patterns"`
}

type patternDTO struct {
	ID             string   `json:"id"`
	TutorID        string   `json:"tutor_id"`
	CourseID       *string  `json:"course_id,omitempty"`
	DayOfWeek      int      `json:"day_of_week"`
	RecurrenceDays []int    `json:"recurrence_days,omitempty"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	TimeZone       string   `json:"timezone"`
	Format         string   `json:"storage_format,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	ExceptionDates []string `json:"exception_dates,omitempty"`
	Available      bool     `json:"available"`
}

func toPatternDTO(pattern availability.RecurrencePattern) patternDTO {
	return patternDTO{
		ID:             pattern.ID,
		TutorID:        pattern.TutorID,
		CourseID:       pattern.CourseID,
		DayOfWeek:      pattern.DayOfWeek,
		RecurrenceDays: pattern.RecurrenceDays,
		StartTime:      pattern.StartTime,
		EndTime:        pattern.EndTime,
		TimeZone:       pattern.TimeZone,
		Format:         string(pattern.Format),
		StartDate:      formatCivilDate(pattern.StartDate),
		EndDate:        formatCivilDate(pattern.EndDate),
		ExceptionDates: pattern.ExceptionDates,
		Available:      pattern.Available,
	}
}

type specificDateDTO struct {
	ID        string  `json:"id"`
	TutorID   string  `json:"tutor_id"`
	CourseID  *string `json:"course_id,omitempty"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	TimeZone  string  `json:"timezone"`
	Format    string  `json:"storage_format,omitempty"`
	Available bool    `json:"available"`
}

func toSpecificDateDTO(record availability.SpecificDate) specificDateDTO {
	return specificDateDTO{
		ID:        record.ID,
		TutorID:   record.TutorID,
		CourseID:  record.CourseID,
		Date:      record.Date.Format("2006-01-02"),
		StartTime: record.StartTime,
		EndTime:   record.EndTime,
		TimeZone:  record.TimeZone,
		Format:    string(record.Format),
		Available: record.Available,
	}
}

func formatCivilDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
