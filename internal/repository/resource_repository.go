package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// ResourceRepository handles persistence for provider resources (tow trucks,
// assistance vans).
type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.ProviderResource) error
	Update(ctx context.Context, resource *domain.ProviderResource) error
	GetByID(ctx context.Context, id string) (*domain.ProviderResource, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.ProviderResource, error)
	// ListActiveOfActiveProviders returns ACTIVO resources whose owning
	// provider is itself active, ordered by resource type.
	ListActiveOfActiveProviders(ctx context.Context) ([]domain.ProviderResource, error)
}

type resourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository instantiates the repository.
func NewResourceRepository(pool *pgxpool.Pool) ResourceRepository {
	return &resourceRepository{pool: pool}
}

const resourceColumns = `id, patente, marca, modelo, anio, tipo, capacidad_kg, estado, proveedor_id, active_flag, created_at, updated_at`

func (r *resourceRepository) Create(ctx context.Context, resource *domain.ProviderResource) error {
	const query = `
        INSERT INTO vehiculos_proveedor (patente, marca, modelo, anio, tipo, capacidad_kg, estado, proveedor_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		resource.Plate,
		resource.Brand,
		resource.Model,
		resource.Year,
		resource.Type,
		resource.CapacityKg,
		resource.Status,
		resource.ProviderID,
		resource.Active,
	).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt)
}

func (r *resourceRepository) Update(ctx context.Context, resource *domain.ProviderResource) error {
	const query = `
        UPDATE vehiculos_proveedor
        SET patente=$1, marca=$2, modelo=$3, anio=$4, tipo=$5, capacidad_kg=$6, estado=$7, active_flag=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		resource.Plate,
		resource.Brand,
		resource.Model,
		resource.Year,
		resource.Type,
		resource.CapacityKg,
		resource.Status,
		resource.Active,
		resource.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.ProviderResource, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos_proveedor WHERE id=$1`, resourceColumns)
	var resource domain.ProviderResource
	if err := scanResource(dbFrom(ctx, r.pool).QueryRow(ctx, query, id), &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func scanResource(row pgx.Row, resource *domain.ProviderResource) error {
	return row.Scan(
		&resource.ID,
		&resource.Plate,
		&resource.Brand,
		&resource.Model,
		&resource.Year,
		&resource.Type,
		&resource.CapacityKg,
		&resource.Status,
		&resource.ProviderID,
		&resource.Active,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)
}

func (r *resourceRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.ProviderResource, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos_proveedor WHERE proveedor_id=$1 ORDER BY tipo ASC`, resourceColumns)
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func (r *resourceRepository) ListActiveOfActiveProviders(ctx context.Context) ([]domain.ProviderResource, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM vehiculos_proveedor vp
        WHERE vp.active_flag=TRUE AND vp.estado=$1
          AND EXISTS (
            SELECT 1 FROM proveedores p
            WHERE p.id = vp.proveedor_id AND p.active_flag=TRUE AND p.deleted_at IS NULL
          )
        ORDER BY vp.tipo ASC`, prefixColumns("vp", resourceColumns))
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, domain.ResourceStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func collectResources(rows pgx.Rows) ([]domain.ProviderResource, error) {
	var result []domain.ProviderResource
	for rows.Next() {
		var resource domain.ProviderResource
		if err := scanResource(rows, &resource); err != nil {
			return nil, err
		}
		result = append(result, resource)
	}
	return result, rows.Err()
}
