package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/weekday"
)

type availabilityService interface {
	ExpandAvailability(ctx context.Context, params application.ExpandAvailabilityParams) (application.AvailabilityResult, error)
}

// AvailabilityHandler serves expanded availability queries.
type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

// Expand handles GET /tutors/{id}/availability.
func (h *AvailabilityHandler) Expand(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	query := r.URL.Query()
	convention := parseConvention(query.Get("convention"))

	params := application.ExpandAvailabilityParams{
		TutorID:    tutorID,
		CourseID:   optionalParam(query.Get("course")),
		Start:      parseCivilDate(query.Get("start")),
		End:        parseCivilDate(query.Get("end")),
		ViewerZone: strings.TrimSpace(query.Get("timezone")),
		Convention: convention,
	}

	result, err := h.service.ExpandAvailability(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if len(result.Warnings) > 0 {
		handlerLogger(r.Context(), h.logger, "availability", "expand", "tutor_id", tutorID).
			WarnContext(r.Context(), "availability data warnings", "count", len(result.Warnings))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Instances: toInstanceDTOs(result.Instances, convention),
		Warnings:  toWarningDTOs(result.Warnings),
	})
}

func parseConvention(value string) weekday.Convention {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return weekday.ConventionPython
	}
	return weekday.Convention(value)
}

// optionalParam maps an absent or blank query value to nil.
func optionalParam(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func parseCivilDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts
	}
	return time.Time{}
}

type availabilityResponse struct {
	Instances []instanceDTO `json:"instances"`
	Warnings  []warningDTO  `json:"warnings,omitempty"`
}

type instanceDTO struct {
	PatternID       string  `json:"pattern_id"`
	TutorID         string  `json:"tutor_id"`
	CourseID        *string `json:"course_id,omitempty"`
	Date            string  `json:"date"`
	ViewerDate      string  `json:"viewer_date"`
	DayOfWeek       int     `json:"day_of_week"`
	DayOfWeekPython int     `json:"day_of_week_python"`
	DayOfWeekJS     int     `json:"day_of_week_js"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	TimeZone        string  `json:"timezone"`
	Available       bool    `json:"available"`
	Specific        bool    `json:"specific"`
}

func toInstanceDTOs(instances []application.AvailabilityInstance, convention weekday.Convention) []instanceDTO {
	out := make([]instanceDTO, 0, len(instances))
	for _, instance := range instances {
		leading := instance.DayOfWeekPython
		if convention == weekday.ConventionJS {
			leading = instance.DayOfWeekJS
		}
		out = append(out, instanceDTO{
			PatternID:       instance.PatternID,
			TutorID:         instance.TutorID,
			CourseID:        instance.CourseID,
			Date:            instance.Date,
			ViewerDate:      instance.ViewerDate,
			DayOfWeek:       leading,
			DayOfWeekPython: instance.DayOfWeekPython,
			DayOfWeekJS:     instance.DayOfWeekJS,
			StartTime:       instance.StartTime,
			EndTime:         instance.EndTime,
			TimeZone:        instance.TimeZone,
			Available:       instance.Available,
			Specific:        instance.Specific,
		})
	}
	return out
}

type warningDTO struct {
	Code     string `json:"code"`
	RecordID string `json:"record_id,omitempty"`
	TutorID  string `json:"tutor_id,omitempty"`
	Message  string `json:"message"`
}

func toWarningDTOs(warnings []availability.Warning) []warningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]warningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, warningDTO{
			Code:     string(warning.Code),
			RecordID: warning.RecordID,
			TutorID:  warning.TutorID,
			Message:  warning.Message,
		})
	}
	return out
}
