package http

import "net/http"

// RouterConfig wires handlers into the API surface. Nil handlers leave their
// routes unregistered, which keeps tests focused on one handler at a time.
type RouterConfig struct {
	Availability *AvailabilityHandler
	Patterns     *PatternHandler
	Bookings     *BookingHandler
	Users        *UserHandler
	Courses      *CourseHandler
	Weekdays     *WeekdayHandler
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP handler for the API. Middleware wraps the mux in
// declaration order, so the first entry sees the request first.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Availability != nil {
		mux.HandleFunc("GET /tutors/{id}/availability", cfg.Availability.Expand)
	}

	if cfg.Patterns != nil {
		mux.HandleFunc("POST /tutors/{id}/patterns", cfg.Patterns.CreatePattern)
		mux.HandleFunc("GET /tutors/{id}/patterns", cfg.Patterns.ListPatterns)
		mux.HandleFunc("DELETE /tutors/{id}/patterns/{patternID}", cfg.Patterns.DeletePattern)
		mux.HandleFunc("POST /tutors/{id}/specific-dates", cfg.Patterns.CreateSpecificDate)
		mux.HandleFunc("DELETE /tutors/{id}/specific-dates/{recordID}", cfg.Patterns.DeleteSpecificDate)
	}

	if cfg.Bookings != nil {
		mux.HandleFunc("POST /bookings", cfg.Bookings.Create)
		mux.HandleFunc("DELETE /bookings/{id}", cfg.Bookings.Delete)
		mux.HandleFunc("POST /bookings/conflicts", cfg.Bookings.CheckConflicts)
		mux.HandleFunc("POST /bookings/conflicts/batch", cfg.Bookings.CheckBatchConflicts)
	}

	if cfg.Users != nil {
		mux.HandleFunc("POST /users", cfg.Users.Create)
		mux.HandleFunc("GET /users/{id}", cfg.Users.Get)
		mux.HandleFunc("GET /tutors", cfg.Users.ListTutors)
	}

	if cfg.Courses != nil {
		mux.HandleFunc("POST /tutors/{id}/courses", cfg.Courses.Create)
		mux.HandleFunc("GET /tutors/{id}/courses", cfg.Courses.List)
		mux.HandleFunc("DELETE /courses/{id}", cfg.Courses.Delete)
	}

	if cfg.Weekdays != nil {
		mux.HandleFunc("GET /weekdays/convert", cfg.Weekdays.Convert)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
