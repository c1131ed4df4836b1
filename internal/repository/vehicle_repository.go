package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// VehicleRepository handles persistence for client vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Vehicle, error)
	ListAll(ctx context.Context) ([]domain.Vehicle, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository instantiates the repository.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, patente, marca, modelo, anio, tipo, empresa_id, created_at, updated_at`

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        INSERT INTO vehiculos (patente, marca, modelo, anio, tipo, empresa_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		vehicle.Plate,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Year,
		vehicle.Type,
		vehicle.CompanyID,
	).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        UPDATE vehiculos SET patente=$1, marca=$2, modelo=$3, anio=$4, tipo=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		vehicle.Plate,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Year,
		vehicle.Type,
		vehicle.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos WHERE id=$1`, vehicleColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *vehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos WHERE patente=$1`, vehicleColumns)
	return r.fetchSingle(ctx, query, plate)
}

func (r *vehicleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := scanVehicle(dbFrom(ctx, r.pool).QueryRow(ctx, query, arg), &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func scanVehicle(row pgx.Row, vehicle *domain.Vehicle) error {
	return row.Scan(
		&vehicle.ID,
		&vehicle.Plate,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Type,
		&vehicle.CompanyID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
}

func (r *vehicleRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos WHERE empresa_id=$1 ORDER BY patente ASC`, vehicleColumns)
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (r *vehicleRepository) ListAll(ctx context.Context) ([]domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos ORDER BY patente ASC`, vehicleColumns)
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows pgx.Rows) ([]domain.Vehicle, error) {
	var result []domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := scanVehicle(rows, &vehicle); err != nil {
			return nil, err
		}
		result = append(result, vehicle)
	}
	return result, rows.Err()
}
