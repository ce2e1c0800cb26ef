package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsletterai/internal/model"
)

const userColumns = `id, email, name, image, password_hash, role, plan,
	newsletter_name, newsletter_description, target_audience, default_tone,
	company_name, industry, legal_disclaimer, stripe_customer_id, created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	u := &model.User{}
	err := s.Scan(
		&u.ID, &u.Email, &u.Name, &u.Image, &u.PasswordHash, &u.Role, &u.Plan,
		&u.Profile.NewsletterName, &u.Profile.NewsletterDescription, &u.Profile.TargetAudience,
		&u.Profile.DefaultTone, &u.Profile.CompanyName, &u.Profile.Industry, &u.Profile.LegalDisclaimer,
		&u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, nil
	}

	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Plan == "" {
		user.Plan = model.PlanFree
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, image, password_hash, role, plan)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.Name, user.Image, user.PasswordHash, user.Role, user.Plan,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile はnilでないフィールドのみ更新する。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) (*model.User, error) {
	if !validID(id) {
		return nil, nil
	}

	user, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET
			name = COALESCE($2, name),
			image = COALESCE($3, image),
			newsletter_name = COALESCE($4, newsletter_name),
			newsletter_description = COALESCE($5, newsletter_description),
			target_audience = COALESCE($6, target_audience),
			default_tone = COALESCE($7, default_tone),
			company_name = COALESCE($8, company_name),
			industry = COALESCE($9, industry),
			legal_disclaimer = COALESCE($10, legal_disclaimer),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, u.Name, u.Image, u.NewsletterName, u.NewsletterDescription, u.TargetAudience,
		u.DefaultTone, u.CompanyName, u.Industry, u.LegalDisclaimer,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	return user, nil
}

// UpdatePassword はパスワードハッシュを更新する。
func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdatePlan はプランとStripe顧客IDを更新する。
func (r *PostgresUserRepo) UpdatePlan(ctx context.Context, id string, plan model.Plan, customerID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET
			plan = $2,
			stripe_customer_id = COALESCE(NULLIF($3, ''), stripe_customer_id),
			updated_at = now()
		 WHERE id = $1`,
		id, plan, customerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("user not found: %s", id)
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
