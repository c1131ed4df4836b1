package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// ProviderRepository handles persistence for assistance providers.
type ProviderRepository interface {
	Create(ctx context.Context, provider *domain.Provider) error
	Update(ctx context.Context, provider *domain.Provider) error
	GetByID(ctx context.Context, id string) (*domain.Provider, error)
	// GetByIDForUpdate locks the provider row; the rating recomputation
	// serializes on it.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Provider, error)
	GetByCUIT(ctx context.Context, cuit string) (*domain.Provider, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Provider, error)
	UpdateRating(ctx context.Context, id string, average float64) error
	SoftDelete(ctx context.Context, id string) error
}

type providerRepository struct {
	pool *pgxpool.Pool
}

// NewProviderRepository instantiates the repository.
func NewProviderRepository(pool *pgxpool.Pool) ProviderRepository {
	return &providerRepository{pool: pool}
}

const providerColumns = `id, razon_social, cuit, email, telefono, direccion, servicios_ofrecidos,
       calificacion_promedio, active_flag, created_at, updated_at, deleted_at`

func (r *providerRepository) Create(ctx context.Context, provider *domain.Provider) error {
	const query = `
        INSERT INTO proveedores (razon_social, cuit, email, telefono, direccion, servicios_ofrecidos, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		provider.LegalName,
		provider.CUIT,
		provider.Email,
		provider.Phone,
		provider.Address,
		provider.ServicesOffered,
		provider.Active,
	).Scan(&provider.ID, &provider.CreatedAt, &provider.UpdatedAt)
}

func (r *providerRepository) Update(ctx context.Context, provider *domain.Provider) error {
	const query = `
        UPDATE proveedores
        SET razon_social=$1, cuit=$2, email=$3, telefono=$4, direccion=$5,
            servicios_ofrecidos=$6, active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		provider.LegalName,
		provider.CUIT,
		provider.Email,
		provider.Phone,
		provider.Address,
		provider.ServicesOffered,
		provider.Active,
		provider.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *providerRepository) GetByID(ctx context.Context, id string) (*domain.Provider, error) {
	query := fmt.Sprintf(`SELECT %s FROM proveedores WHERE id=$1`, providerColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *providerRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Provider, error) {
	query := fmt.Sprintf(`SELECT %s FROM proveedores WHERE id=$1 FOR UPDATE`, providerColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *providerRepository) GetByCUIT(ctx context.Context, cuit string) (*domain.Provider, error) {
	query := fmt.Sprintf(`SELECT %s FROM proveedores WHERE cuit=$1`, providerColumns)
	return r.fetchSingle(ctx, query, cuit)
}

func (r *providerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Provider, error) {
	var provider domain.Provider
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&provider.ID,
		&provider.LegalName,
		&provider.CUIT,
		&provider.Email,
		&provider.Phone,
		&provider.Address,
		&provider.ServicesOffered,
		&provider.AverageRating,
		&provider.Active,
		&provider.CreatedAt,
		&provider.UpdatedAt,
		&provider.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) List(ctx context.Context, activeOnly bool) ([]domain.Provider, error) {
	query := fmt.Sprintf(`SELECT %s FROM proveedores WHERE deleted_at IS NULL`, providerColumns)
	if activeOnly {
		query += ` AND active_flag=TRUE`
	}
	query += ` ORDER BY razon_social ASC`

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Provider
	for rows.Next() {
		var provider domain.Provider
		if err := rows.Scan(
			&provider.ID,
			&provider.LegalName,
			&provider.CUIT,
			&provider.Email,
			&provider.Phone,
			&provider.Address,
			&provider.ServicesOffered,
			&provider.AverageRating,
			&provider.Active,
			&provider.CreatedAt,
			&provider.UpdatedAt,
			&provider.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, provider)
	}
	return result, rows.Err()
}

func (r *providerRepository) UpdateRating(ctx context.Context, id string, average float64) error {
	const query = `UPDATE proveedores SET calificacion_promedio=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, average, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *providerRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE proveedores SET active_flag=FALSE, deleted_at=NOW(), updated_at=NOW() WHERE id=$1`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
