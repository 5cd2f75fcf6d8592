package db

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/pgstore"
)

const userColumns = `id, email, full_name, role, status, provider, password, created_at`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.Start(ctx, "GetUserByEmail")
	defer func() { pgstore.End(span, err) }()

	var u entity.User
	err = s.Conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM identity_users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Status, &u.Provider, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, pgstore.MapError(err)
	}

	return &u, nil
}

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser, hash string) (err error) {
	ctx, span := s.Start(ctx, "CreateUser")
	defer func() { pgstore.End(span, err) }()

	_, err = s.Conn.Exec(ctx,
		`INSERT INTO identity_users (id, email, full_name, role, status, provider, password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.FullName, user.Role, user.Status, user.Provider, hash,
	)

	err = pgstore.MapError(err)
	return err
}

// UpsertProviderUser inserts the provider account or refreshes the name of an
// existing user with the same email. Role, status and password are kept.
func (s *DB) UpsertProviderUser(ctx context.Context, user entity.NewUser) (_ *entity.User, err error) {
	ctx, span := s.Start(ctx, "UpsertProviderUser")
	defer func() { pgstore.End(span, err) }()

	var u entity.User
	err = s.Conn.QueryRow(ctx,
		`INSERT INTO identity_users (id, email, full_name, role, status, provider)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE
		   SET full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), identity_users.full_name),
		       updated_at = now()
		 RETURNING `+userColumns,
		user.ID, user.Email, user.FullName, user.Role, user.Status, user.Provider,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Status, &u.Provider, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, pgstore.MapError(err)
	}

	return &u, nil
}

// UpdateUserPassword replaces the stored password hash of a password account.
func (s *DB) UpdateUserPassword(ctx context.Context, id int64, hash string) (err error) {
	ctx, span := s.Start(ctx, "UpdateUserPassword")
	defer func() { pgstore.End(span, err) }()

	tag, err := s.Conn.Exec(ctx,
		`UPDATE identity_users SET password = $2, updated_at = now() WHERE id = $1 AND password <> ''`,
		id, hash,
	)
	if err != nil {
		return pgstore.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}

	return err
}
