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
)

var errInvalidCourseID = errors.New("course id is required")

type courseService interface {
	CreateCourse(ctx context.Context, input application.CourseInput) (application.Course, error)
	ListCourses(ctx context.Context, tutorID string) ([]application.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// CourseHandler manages the subjects tutors teach.
type CourseHandler struct {
	service   courseService
	responder responder
}

func NewCourseHandler(service courseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{service: service, responder: newResponder(logger)}
}

// Create handles POST /tutors/{id}/courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	course, err := h.service.CreateCourse(r.Context(), application.CourseInput{
		TutorID: tutorID,
		Name:    strings.TrimSpace(req.Name),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCourseDTO(course))
}

// List handles GET /tutors/{id}/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID := strings.TrimSpace(r.PathValue("id"))
	if tutorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	courses, err := h.service.ListCourses(r.Context(), tutorID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseDTO(course))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCoursesResponse{Courses: out})
}

// Delete handles DELETE /courses/{id}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCourseID)
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type courseRequest struct {
	Name string `json:"name"`
}

type listCoursesResponse struct {
	Courses []courseDTO `json:"courses"`
}

type courseDTO struct {
	ID        string `json:"id"`
	TutorID   string `json:"tutor_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCourseDTO(course application.Course) courseDTO {
	return courseDTO{
		ID:        course.ID,
		TutorID:   course.TutorID,
		Name:      course.Name,
		CreatedAt: course.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: course.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
