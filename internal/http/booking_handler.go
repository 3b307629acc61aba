package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/scheduler"
)

type bookingService interface {
	CreateBooking(ctx context.Context, input application.BookingInput) (application.Booking, []scheduler.Conflict, error)
	DeleteBooking(ctx context.Context, id string) error
	DetectConflicts(ctx context.Context, params application.CheckConflictParams) (application.ConflictResult, error)
	DetectBatchConflicts(ctx context.Context, batch []application.CheckConflictParams) ([]application.ConflictResult, error)
}

// BookingHandler manages confirmed sessions and conflict probes.
type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

// Create handles POST /bookings. A blocked request returns 409 with the
// conflicts that caused the rejection.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	booking, conflicts, err := h.service.CreateBooking(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, application.ErrBookingConflict) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict, conflictResponse{
				Blocking:  true,
				Conflicts: toConflictDTOs(conflicts),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{
		Booking:   toBookingDTO(booking),
		Conflicts: toConflictDTOs(conflicts),
	})
}

// Delete handles DELETE /bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	if err := h.service.DeleteBooking(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CheckConflicts handles POST /bookings/conflicts.
func (h *BookingHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conflictCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.DetectConflicts(r.Context(), req.toParams())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictResponse{
		Blocking:  result.Blocking,
		Conflicts: toConflictDTOs(result.Conflicts),
	})
}

// CheckBatchConflicts handles POST /bookings/conflicts/batch. Requests in the
// batch are also checked against each other.
func (h *BookingHandler) CheckBatchConflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req batchConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	batch := make([]application.CheckConflictParams, 0, len(req.Requests))
	for _, probe := range req.Requests {
		batch = append(batch, probe.toParams())
	}

	results, err := h.service.DetectBatchConflicts(r.Context(), batch)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]conflictResponse, 0, len(results))
	for _, result := range results {
		out = append(out, conflictResponse{
			Blocking:  result.Blocking,
			Conflicts: toConflictDTOs(result.Conflicts),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, batchConflictResponse{Results: out})
}

type bookingRequest struct {
	TutorID    string   `json:"tutor_id"`
	StudentIDs []string `json:"student_ids"`
	StudentID  string   `json:"student_id"` // legacy single-student field
	CourseID   *string  `json:"course_id"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		TutorID:    strings.TrimSpace(r.TutorID),
		StudentIDs: r.studentIDs(),
		CourseID:   r.CourseID,
		Start:      parseInstant(r.Start),
		End:        parseInstant(r.End),
	}
}

// studentIDs resolves the student set. student_ids wins when present;
// otherwise a legacy student_id payload still books a single student.
func (r bookingRequest) studentIDs() []string {
	if len(r.StudentIDs) > 0 {
		out := make([]string, 0, len(r.StudentIDs))
		for _, id := range r.StudentIDs {
			out = append(out, strings.TrimSpace(id))
		}
		return out
	}
	if legacy := strings.TrimSpace(r.StudentID); legacy != "" {
		return []string{legacy}
	}
	return nil
}

type conflictCheckRequest struct {
	bookingRequest
	ExcludeBookingID string `json:"exclude_booking_id"`
}

func (r conflictCheckRequest) toParams() application.CheckConflictParams {
	return application.CheckConflictParams{
		Input:            r.toInput(),
		ExcludeBookingID: strings.TrimSpace(r.ExcludeBookingID),
	}
}

type batchConflictRequest struct {
	Requests []conflictCheckRequest `json:"requests"`
}

func parseInstant(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type bookingResponse struct {
	Booking   bookingDTO    `json:"booking"`
	Conflicts []conflictDTO `json:"conflicts,omitempty"`
}

type bookingDTO struct {
	ID         string   `json:"id"`
	TutorID    string   `json:"tutor_id"`
	StudentIDs []string `json:"student_ids"`
	CourseID   *string  `json:"course_id,omitempty"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:         booking.ID,
		TutorID:    booking.TutorID,
		StudentIDs: booking.StudentIDs,
		CourseID:   booking.CourseID,
		Start:      booking.Start.UTC().Format(time.RFC3339),
		End:        booking.End.UTC().Format(time.RFC3339),
		CreatedAt:  booking.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  booking.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type conflictResponse struct {
	Blocking  bool          `json:"blocking"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type batchConflictResponse struct {
	Results []conflictResponse `json:"results"`
}

type conflictDTO struct {
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	WithBookingID string `json:"with_booking_id,omitempty"`
	TutorID       string `json:"tutor_id,omitempty"`
	StudentID     string `json:"student_id,omitempty"`
	Message       string `json:"message"`
}

func toConflictDTOs(conflicts []scheduler.Conflict) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, conflictDTO{
			Type:          string(conflict.Type),
			Severity:      string(conflict.Severity),
			WithBookingID: conflict.WithBookingID,
			TutorID:       conflict.TutorID,
			StudentID:     conflict.StudentID,
			Message:       conflict.Message,
		})
	}
	return out
}
