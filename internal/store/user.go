package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Emiliocodings/ServiceUsers/types"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, first_name, last_name, role, active, created_at, updated_at`

// userRow is the storage representation of a user.
type userRow struct {
	ID        int64        `db:"id"`
	Username  string       `db:"username"`
	Email     string       `db:"email"`
	FirstName string       `db:"first_name"`
	LastName  string       `db:"last_name"`
	Role      string       `db:"role"`
	Active    bool         `db:"active"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

func newUserRow(user types.User) userRow {
	row := userRow{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
	if user.UpdatedAt != nil {
		row.UpdatedAt = sql.NullTime{Time: *user.UpdatedAt, Valid: true}
	}
	return row
}

func (r userRow) toUser() types.User {
	user := types.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
	if r.UpdatedAt.Valid {
		updatedAt := r.UpdatedAt.Time
		user.UpdatedAt = &updatedAt
	}
	return user
}

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]types.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	const query = `SELECT ` + userColumns + `
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, offset, limit); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]types.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return row.toUser(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return row.toUser(), nil
}

// Create inserts the user. The id and created_at are assigned by the database.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, email, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := newUserRow(user)
	var created userRow
	if err := r.db.GetContext(
		ctx,
		&created,
		query,
		row.Username,
		row.Email,
		row.FirstName,
		row.LastName,
		row.Role,
		row.Active,
	); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrConflict
		}
		return types.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created.toUser(), nil
}

// Update merges patch into the stored user and stamps updated_at.
// The read and the write run in one transaction holding the row lock.
func (r *UserRepository) Update(ctx context.Context, id int64, patch types.UserPatch) (types.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return types.User{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const selectQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	var current userRow
	if err := tx.GetContext(ctx, &current, selectQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("lock user %d: %w", id, err)
	}

	merged := patch.Apply(current.toUser())
	now := time.Now().UTC()
	merged.UpdatedAt = &now
	row := newUserRow(merged)

	const updateQuery = `
		UPDATE users
		SET username = $1,
			email = $2,
			first_name = $3,
			last_name = $4,
			role = $5,
			active = $6,
			updated_at = $7
		WHERE id = $8
		RETURNING ` + userColumns
	var updated userRow
	if err := tx.GetContext(
		ctx,
		&updated,
		updateQuery,
		row.Username,
		row.Email,
		row.FirstName,
		row.LastName,
		row.Role,
		row.Active,
		row.UpdatedAt,
		id,
	); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrConflict
		}
		return types.User{}, fmt.Errorf("update user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, fmt.Errorf("commit update: %w", err)
	}
	return updated.toUser(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
