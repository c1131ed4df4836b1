package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role       *domain.Role
	CompanyID  *string
	ProviderID *string
	Active     *bool
	Limit      int
	Offset     int
}

// UserRepository handles persistence for platform users, including provider
// operators and their availability state.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDForUpdate locks the user row inside the ambient transaction;
	// availability reads and writes for one operator serialize on it.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// ListAvailableOperators returns the provider's DISPONIBLE operators in
	// deterministic id order, locking the rows when called inside a
	// transaction so concurrent dispatches cannot double-book.
	ListAvailableOperators(ctx context.Context, providerID string) ([]domain.User, error)
	SetAvailability(ctx context.Context, id string, availability domain.Availability) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates the repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, password_hash, nombre, apellido, telefono, rol,
       empresa_id, proveedor_id, estado_disponibilidad, active_flag, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO usuarios (email, password_hash, nombre, apellido, telefono, rol, empresa_id, proveedor_id, estado_disponibilidad, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.CompanyID,
		user.ProviderID,
		user.Availability,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE usuarios
        SET email=$1, password_hash=$2, nombre=$3, apellido=$4, telefono=$5, rol=$6,
            empresa_id=$7, proveedor_id=$8, estado_disponibilidad=$9, active_flag=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.CompanyID,
		user.ProviderID,
		user.Availability,
		user.Active,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE id=$1`, userColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE id=$1 FOR UPDATE`, userColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE email=$1`, userColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(dbFrom(ctx, r.pool).QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.CompanyID,
		&user.ProviderID,
		&user.Availability,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios`, userColumns)
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("rol=$%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("empresa_id=$%d", len(args)))
	}
	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		clauses = append(clauses, fmt.Sprintf("proveedor_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *userRepository) ListAvailableOperators(ctx context.Context, providerID string) ([]domain.User, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM usuarios
        WHERE rol=$1 AND estado_disponibilidad=$2 AND proveedor_id=$3 AND active_flag=TRUE
        ORDER BY id ASC`, userColumns)
	if _, inTx := ctx.Value(txKey{}).(pgx.Tx); inTx {
		query += " FOR UPDATE"
	}

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query,
		domain.RoleProviderOperator, domain.AvailabilityAvailable, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *userRepository) SetAvailability(ctx context.Context, id string, availability domain.Availability) error {
	const query = `UPDATE usuarios SET estado_disponibilidad=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, availability, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
