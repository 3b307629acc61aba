package sqlite

import (
	"context"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/persistence"
)

// CourseRepository stores the subjects tutors teach.
type CourseRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCourseRepository creates a SQLite course repository.
func NewCourseRepository(pool *ConnectionPool) *CourseRepository {
	return &CourseRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCourse inserts a course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course application.Course) (application.Course, error) {
	if course.ID == "" {
		return application.Course{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO courses (id, tutor_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		course.ID,
		course.TutorID,
		course.Name,
		formatInstant(course.CreatedAt),
		formatInstant(course.UpdatedAt),
	)
	if err != nil {
		return application.Course{}, r.mapper.MapError(err)
	}
	return course, nil
}

// ListCoursesByTutor returns the tutor's courses ordered by name.
func (r *CourseRepository) ListCoursesByTutor(ctx context.Context, tutorID string) ([]application.Course, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, tutor_id, name, created_at, updated_at
		FROM courses
		WHERE tutor_id = ?
		ORDER BY name, id
	`, tutorID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var courses []application.Course
	for rows.Next() {
		var (
			course           application.Course
			created, updated string
		)
		if err := rows.Scan(&course.ID, &course.TutorID, &course.Name, &created, &updated); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if course.CreatedAt, err = parseInstant(created); err != nil {
			return nil, err
		}
		if course.UpdatedAt, err = parseInstant(updated); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return courses, nil
}

// CourseExists reports whether the course id resolves.
func (r *CourseRepository) CourseExists(ctx context.Context, id string) (bool, error) {
	var count int
	row := r.helper.QueryRow(ctx, `SELECT COUNT(1) FROM courses WHERE id = ?`, id)
	if err := row.Scan(&count); err != nil {
		return false, r.mapper.MapError(err)
	}
	return count > 0, nil
}

// DeleteCourse removes a course by id.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
