package repository

import (
	"context"
	"time"

	"studio-backend/internal/domain/user"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(pool db.DBTX) *UserRepository {
	return &UserRepository{db: pool}
}

const findUserByEmailSQL = `
SELECT id, name, email, password_hash, phone, role, is_active, gateway_customer_id
FROM users
WHERE email = $1
`

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*commands.UserSnapshot, string, error) {
	var (
		snap         commands.UserSnapshot
		passwordHash string
		phone        pgtype.Text
		customerID   pgtype.Text
	)
	err := r.db.QueryRow(ctx, findUserByEmailSQL, email).Scan(
		&snap.ID, &snap.Name, &snap.Email, &passwordHash, &phone, &snap.Role, &snap.IsActive, &customerID,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	snap.Phone = pgconv.StringPtrFromPgtype(phone)
	snap.GatewayCustomerID = pgconv.StringPtrFromPgtype(customerID)
	return &snap, passwordHash, nil
}

const findUserByIDSQL = `
SELECT id, name, email, phone, role, is_active, gateway_customer_id
FROM users
WHERE id = $1
`

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.UserSnapshot, error) {
	var (
		snap       commands.UserSnapshot
		phone      pgtype.Text
		customerID pgtype.Text
	)
	err := r.db.QueryRow(ctx, findUserByIDSQL, id).Scan(
		&snap.ID, &snap.Name, &snap.Email, &phone, &snap.Role, &snap.IsActive, &customerID,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	snap.Phone = pgconv.StringPtrFromPgtype(phone)
	snap.GatewayCustomerID = pgconv.StringPtrFromPgtype(customerID)
	return &snap, nil
}

const setGatewayCustomerIDSQL = `
UPDATE users SET gateway_customer_id = $2, updated_at = now() WHERE id = $1
`

func (r *UserRepository) SetGatewayCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	if _, err := r.db.Exec(ctx, setGatewayCustomerIDSQL, id, customerID); err != nil {
		return infra.WrapRepoErr("failed to set gateway customer id", err)
	}
	return nil
}

const createUserSQL = `
INSERT INTO users (id, name, email, password_hash, phone, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING id
`

func (r *UserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, createUserSQL,
		u.ID(), u.Name(), u.Email().Value(), u.PasswordHash(),
		pgconv.TextFromPtr(u.Phone()), u.Role().String(), u.IsActive(),
	).Scan(&id)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

const updateLastLoginSQL = `
UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1
`

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, updateLastLoginSQL, id, at); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

const authorizedUserViewSQL = `
SELECT id, name, email, role, is_active
FROM users
WHERE id = $1
`

func (r *UserRepository) ViewByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var view queries.AuthorizedUserView
	err := r.db.QueryRow(ctx, authorizedUserViewSQL, id).Scan(
		&view.ID, &view.Name, &view.Email, &view.Role, &view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load user view", err)
	}
	return &view, nil
}
