package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/tutoring-scheduler/internal/weekday"
)

// WeekdayHandler converts weekday integers between numbering conventions.
type WeekdayHandler struct {
	responder responder
}

func NewWeekdayHandler(logger *slog.Logger) *WeekdayHandler {
	return &WeekdayHandler{responder: newResponder(logger)}
}

// Convert handles GET /weekdays/convert.
func (h *WeekdayHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	fieldErrors := make(map[string]string)

	day, err := strconv.Atoi(strings.TrimSpace(query.Get("day")))
	if err != nil {
		fieldErrors["day"] = "day must be an integer between 0 and 6"
	}

	from := parseConvention(query.Get("from"))
	if !from.Valid() {
		fieldErrors["from"] = "from must be \"python\" or \"js\""
	}

	if len(fieldErrors) == 0 {
		if days, ok := weekday.Convert(day, from); ok {
			h.responder.writeJSON(r.Context(), w, http.StatusOK, weekdayResponse{
				Python: days.Python,
				JS:     days.JS,
			})
			return
		}
		fieldErrors["day"] = "day must be an integer between 0 and 6"
	}

	h.responder.writeFieldErrors(r.Context(), w, fieldErrors)
}

type weekdayResponse struct {
	Python int `json:"python"`
	JS     int `json:"js"`
}
