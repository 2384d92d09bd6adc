package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/repository/migrations"
	"github.com/vasapolrittideah/taskboard-api/shared/dbx"
)

const pgUniqueViolation = "23505"

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateKey
	}
	return fmt.Errorf("db error: %w", err)
}

type userPostgresRepository struct {
	db dbx.DBTX
}

// NewUserPostgresRepository creates a user repository over database/sql.
func NewUserPostgresRepository(db dbx.DBTX) UserRepository {
	return &userPostgresRepository{db: db}
}

func (r *userPostgresRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `INSERT INTO users (email, display_name, password_hash, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	now := time.Now().UTC()
	created := *user
	created.CreatedAt = now
	created.UpdatedAt = now

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.DisplayName, user.PasswordHash, user.Phone, now).Scan(&id)
	if err != nil {
		return nil, mapPgError(err)
	}
	created.ID = fmt.Sprint(id)

	return &created, nil
}

func (r *userPostgresRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, email, display_name, password_hash, phone, created_at, updated_at
		FROM users WHERE id = $1`

	if !isNumericID(id) {
		return nil, ErrNotFound
	}

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userPostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, display_name, password_hash, phone, created_at, updated_at
		FROM users WHERE email = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user model.User
		id   int64
	)
	err := row.Scan(&id, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.ID = fmt.Sprint(id)

	return &user, nil
}

func isNumericID(id string) bool {
	if id == "" || len(id) > 19 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

type passwordResetTokenPostgresRepository struct {
	db *sql.DB
}

// NewPasswordResetTokenPostgresRepository creates a reset token repository over database/sql.
// It needs the *sql.DB itself because consuming a token opens a transaction.
func NewPasswordResetTokenPostgresRepository(db *sql.DB) PasswordResetTokenRepository {
	return &passwordResetTokenPostgresRepository{db: db}
}

func (r *passwordResetTokenPostgresRepository) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	query := `INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	if !isNumericID(token.UserID) {
		return nil, ErrNotFound
	}

	created := *token
	created.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt, created.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}

	return &created, nil
}

func (r *passwordResetTokenPostgresRepository) GetToken(
	ctx context.Context,
	token string,
) (*model.PasswordResetToken, error) {
	query := `SELECT token, user_id, expires_at, created_at
		FROM password_reset_tokens WHERE token = $1`

	var (
		t      model.PasswordResetToken
		userID int64
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.Token, &userID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.UserID = fmt.Sprint(userID)

	return &t, nil
}

func (r *passwordResetTokenPostgresRepository) ConsumeToken(
	ctx context.Context,
	token, passwordHash string,
	now time.Time,
) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var userID int64
		err := tx.QueryRowContext(ctx,
			`DELETE FROM password_reset_tokens WHERE token = $1 AND expires_at >= $2 RETURNING user_id`,
			token, now).Scan(&userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return tokenMissingOrExpired(ctx, tx, token)
			}
			return fmt.Errorf("db error: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
			passwordHash, time.Now().UTC(), userID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return errors.New("password reset token owner not found")
		}

		return nil
	})
}

func tokenMissingOrExpired(ctx context.Context, tx dbx.DBTX, token string) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM password_reset_tokens WHERE token = $1)`, token).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if exists {
		return ErrExpired
	}
	return ErrNotFound
}
