package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wastewise/api/internal/models"
	"wastewise/api/internal/security"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is distinguishable from generic store failures
	// so the API can answer "Email already exists" instead of a 500.
	ErrDuplicateEmail = errors.New("email already exists")
)

const uniqueViolation = "23505"

const userColumns = `
	id, name, address, email, contact, password_hash, role,
	google_id, avatar_url, is_oauth_user, is_verified, verification_token,
	created_at, updated_at
`

// UserRepository is the credential store. The contact field passes
// through the field cipher on every write and read.
type UserRepository struct {
	pool   *pgxpool.Pool
	cipher *security.FieldCipher
}

func NewUserRepository(pool *pgxpool.Pool, cipher *security.FieldCipher) *UserRepository {
	return &UserRepository{pool: pool, cipher: cipher}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (int64, error) {
	const query = `
		INSERT INTO users (
			name, address, email, contact, password_hash, role,
			google_id, avatar_url, is_oauth_user, is_verified, verification_token,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		) RETURNING id
	`

	contact, err := r.cipher.Encode(user.Contact)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.pool.QueryRow(ctx, query,
		user.Name,
		user.Address,
		strings.ToLower(user.Email),
		contact,
		user.PasswordHash,
		user.Role,
		user.GoogleID,
		user.AvatarURL,
		user.IsOAuthUser,
		user.IsVerified,
		user.VerificationToken,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, googleID))
}

// LinkGoogle marks an existing local account as federated.
func (r *UserRepository) LinkGoogle(ctx context.Context, id int64, googleID string, avatarURL string) error {
	const query = `
		UPDATE users
		SET google_id = $2, avatar_url = $3, is_oauth_user = TRUE, is_verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, googleID, avatarURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	const query = `
		UPDATE users
		SET name = $2, address = $3, email = $4, contact = $5, updated_at = NOW()
		WHERE id = $1
	`

	contact, err := r.cipher.Encode(user.Contact)
	if err != nil {
		return err
	}

	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Address,
		strings.ToLower(user.Email),
		contact,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, token string) error {
	const query = `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL, updated_at = NOW()
		WHERE verification_token = $1
	`
	cmd, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, role).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeStaleVerificationTokens drops tokens for accounts that never
// completed verification within the cutoff window.
func (r *UserRepository) PurgeStaleVerificationTokens(ctx context.Context, olderThan time.Duration) (int64, error) {
	const query = `
		UPDATE users
		SET verification_token = NULL, updated_at = NOW()
		WHERE is_verified = FALSE
		  AND verification_token IS NOT NULL
		  AND created_at < NOW() - make_interval(secs => $1)
	`
	cmd, err := r.pool.Exec(ctx, query, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var user models.User
	var storedContact string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Address,
		&user.Email,
		&storedContact,
		&user.PasswordHash,
		&user.Role,
		&user.GoogleID,
		&user.AvatarURL,
		&user.IsOAuthUser,
		&user.IsVerified,
		&user.VerificationToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	contact, state := r.cipher.Decode(storedContact)
	user.Contact = contact
	user.ContactOpaque = r.cipher != nil && state == security.FieldOpaque
	return user, nil
}
