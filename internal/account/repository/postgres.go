package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"account-service/internal/account/domain"
)

const pgUniqueViolation = "23505"

// PostgresRepository stores accounts in the accounts and account_permissions
// tables created by the embedded migrations.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository over db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the account and its permissions in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, username, password_hash, bio, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.Username, a.PasswordHash, a.Bio, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
		if err != nil {
			return wrapPgError(err)
		}
		return insertPermissions(ctx, tx, a)
	})
}

// Update rewrites bio and updated_at and replaces the permission rows.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET bio = $2, updated_at = $3 WHERE id = $1`,
			a.ID, a.Bio, a.UpdatedAt.UTC())
		if err != nil {
			return wrapPgError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM account_permissions WHERE account_id = $1`, a.ID); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, a)
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.get(ctx, `SELECT id, username, password_hash, bio, created_at, updated_at FROM accounts WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.get(ctx, `SELECT id, username, password_hash, bio, created_at, updated_at FROM accounts WHERE username = $1`, username)
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM account_permissions WHERE account_id = $1 ORDER BY position`, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	a.Permissions = []domain.Permission{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		a.Permissions = append(a.Permissions, domain.Permission{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertPermissions(ctx context.Context, tx *sql.Tx, a *domain.Account) error {
	for i, p := range a.Permissions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO account_permissions (account_id, name, position, granted_at) VALUES ($1, $2, $3, $4)`,
			a.ID, p.Name, i, a.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert permission %q: %w", p.Name, err)
		}
	}
	return nil
}

func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrAlreadyExists
	}
	return err
}
