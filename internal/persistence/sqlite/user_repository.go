package sqlite

import (
	"context"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/persistence"
)

// UserRepository stores tutor and student accounts.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts an account.
func (r *UserRepository) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if user.ID == "" {
		return application.User{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (id, email, display_name, role, time_zone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		string(user.Role),
		user.TimeZone,
		formatInstant(user.CreatedAt),
		formatInstant(user.UpdatedAt),
	)
	if err != nil {
		return application.User{}, r.mapper.MapError(err)
	}
	return user, nil
}

// GetUser retrieves an account by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (application.User, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, email, display_name, role, time_zone, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
	user, err := scanUser(row)
	if err != nil {
		return application.User{}, r.mapper.MapError(err)
	}
	return user, nil
}

// ListUsers returns accounts with the given role ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context, role application.UserRole) ([]application.User, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, email, display_name, role, time_zone, created_at, updated_at
		FROM users
		WHERE role = ?
		ORDER BY created_at, id
	`, string(role))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []application.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

func scanUser(row rowScanner) (application.User, error) {
	var (
		user             application.User
		role             string
		created, updated string
	)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &role, &user.TimeZone, &created, &updated)
	if err != nil {
		return application.User{}, err
	}

	user.Role = application.UserRole(role)
	if user.CreatedAt, err = parseInstant(created); err != nil {
		return application.User{}, err
	}
	if user.UpdatedAt, err = parseInstant(updated); err != nil {
		return application.User{}, err
	}
	return user, nil
}
