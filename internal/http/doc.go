// Package http provides HTTP handlers and middleware for the tutoring API.
//
// The router exposes the following endpoints:
//   - GET /tutors/{id}/availability: expands a tutor's stored availability
//     into dated instances. Query: start, end ("YYYY-MM-DD"), timezone (IANA
//     zone the instances are rendered in), convention ("python" or "js").
//     Data-quality warnings accompany the instances without failing the query.
//   - POST /tutors/{id}/patterns, GET /tutors/{id}/patterns,
//     DELETE /tutors/{id}/patterns/{patternID}: recurring availability
//     management. Create bodies are loose JSON objects; malformed fields are
//     reported per field rather than failing the decode.
//   - POST /tutors/{id}/specific-dates, DELETE /tutors/{id}/specific-dates/{recordID}:
//     single-date availability overrides.
//   - POST /bookings, DELETE /bookings/{id}: session booking. A blocked
//     create returns 409 with the conflicts that caused the rejection.
//   - POST /bookings/conflicts, POST /bookings/conflicts/batch: conflict
//     probes that do not persist anything. Batch requests are additionally
//     checked against each other.
//   - POST /users, GET /users/{id}, GET /tutors: account management and the
//     tutor directory.
//   - POST /tutors/{id}/courses, GET /tutors/{id}/courses,
//     DELETE /courses/{id}: subjects a tutor teaches.
//   - GET /weekdays/convert: converts a weekday integer between the
//     Monday-based and Sunday-based numbering conventions. Query: day, from.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
