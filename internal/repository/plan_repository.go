package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// PlanRepository handles persistence for subscription plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	Update(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Plan, error)
	SoftDelete(ctx context.Context, id string) error
}

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository instantiates the repository.
func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &planRepository{pool: pool}
}

const planColumns = `id, nombre, descripcion, servicios_incluidos, precio_mensual, active_flag, created_at, updated_at, deleted_at`

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	const query = `
        INSERT INTO planes (nombre, descripcion, servicios_incluidos, precio_mensual, active_flag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		plan.Name,
		plan.Description,
		plan.IncludedServices,
		plan.MonthlyPrice,
		plan.Active,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	const query = `
        UPDATE planes
        SET nombre=$1, descripcion=$2, servicios_incluidos=$3, precio_mensual=$4, active_flag=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		plan.Name,
		plan.Description,
		plan.IncludedServices,
		plan.MonthlyPrice,
		plan.Active,
		plan.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM planes WHERE id=$1`, planColumns)
	var plan domain.Plan
	if err := scanPlan(dbFrom(ctx, r.pool).QueryRow(ctx, query, id), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func scanPlan(row pgx.Row, plan *domain.Plan) error {
	return row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.IncludedServices,
		&plan.MonthlyPrice,
		&plan.Active,
		&plan.CreatedAt,
		&plan.UpdatedAt,
		&plan.DeletedAt,
	)
}

func (r *planRepository) List(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM planes`, planColumns)
	if !includeInactive {
		query += ` WHERE active_flag=TRUE AND deleted_at IS NULL`
	}
	query += ` ORDER BY precio_mensual ASC`

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Plan
	for rows.Next() {
		var plan domain.Plan
		if err := scanPlan(rows, &plan); err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

func (r *planRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE planes SET active_flag=FALSE, deleted_at=NOW(), updated_at=NOW() WHERE id=$1`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
