package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// CompanyRepository handles persistence for client companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByCUIT(ctx context.Context, cuit string) (*domain.Company, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Company, error)
	SoftDelete(ctx context.Context, id string) error
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

const companyColumns = `id, razon_social, cuit, email, telefono, direccion, plan_id,
       active_flag, created_at, updated_at, deleted_at`

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	const query = `
        INSERT INTO empresas (razon_social, cuit, email, telefono, direccion, plan_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		company.LegalName,
		company.CUIT,
		company.Email,
		company.Phone,
		company.Address,
		company.PlanID,
		company.Active,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	const query = `
        UPDATE empresas
        SET razon_social=$1, cuit=$2, email=$3, telefono=$4, direccion=$5, plan_id=$6,
            active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		company.LegalName,
		company.CUIT,
		company.Email,
		company.Phone,
		company.Address,
		company.PlanID,
		company.Active,
		company.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM empresas WHERE id=$1`, companyColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *companyRepository) GetByCUIT(ctx context.Context, cuit string) (*domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM empresas WHERE cuit=$1`, companyColumns)
	return r.fetchSingle(ctx, query, cuit)
}

func (r *companyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Company, error) {
	var company domain.Company
	if err := scanCompany(dbFrom(ctx, r.pool).QueryRow(ctx, query, arg), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func scanCompany(row pgx.Row, company *domain.Company) error {
	return row.Scan(
		&company.ID,
		&company.LegalName,
		&company.CUIT,
		&company.Email,
		&company.Phone,
		&company.Address,
		&company.PlanID,
		&company.Active,
		&company.CreatedAt,
		&company.UpdatedAt,
		&company.DeletedAt,
	)
}

func (r *companyRepository) List(ctx context.Context, activeOnly bool) ([]domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM empresas WHERE deleted_at IS NULL`, companyColumns)
	if activeOnly {
		query += ` AND active_flag=TRUE`
	}
	query += ` ORDER BY razon_social ASC`

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Company
	for rows.Next() {
		var company domain.Company
		if err := scanCompany(rows, &company); err != nil {
			return nil, err
		}
		result = append(result, company)
	}
	return result, rows.Err()
}

func (r *companyRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE empresas SET active_flag=FALSE, deleted_at=NOW(), updated_at=NOW() WHERE id=$1`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
