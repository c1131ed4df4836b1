package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// RequestFilter captures listing parameters for assistance requests. Tenant
// scoping is applied by the service layer before the filter reaches here.
type RequestFilter struct {
	Status     *domain.RequestStatus
	Type       *domain.AssistanceType
	CompanyID  *string
	ProviderID *string
	VehicleID  *string
	Limit      int
	Offset     int
}

// RequestRepository encapsulates assistance request persistence.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.AssistanceRequest) error
	Update(ctx context.Context, req *domain.AssistanceRequest) error
	GetByID(ctx context.Context, id string) (*domain.AssistanceRequest, error)
	// GetByIDForUpdate locks the row for the remainder of the ambient
	// transaction. Callers must be inside RunInTx.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.AssistanceRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.AssistanceRequest, error)
	CountWithFilter(ctx context.Context, filter RequestFilter) (int64, error)
	// ProviderRatingAverage returns the arithmetic mean over all non-null
	// ratings of the provider's requests and how many were rated.
	ProviderRatingAverage(ctx context.Context, providerID string) (float64, int64, error)
	StatusCountsByProvider(ctx context.Context, providerID string) (map[domain.RequestStatus]int64, error)
	RevenueByProvider(ctx context.Context, providerID string) (float64, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, tipo, prioridad, estado, latitud, longitud, direccion, observaciones, fotos,
       vehiculo_id, empresa_id, solicitado_por_id, proveedor_id, vehiculo_proveedor_id, atendido_por_id,
       costo_final, calificacion, comentario_cliente, motivo_cancelacion,
       fecha_solicitud, fecha_asignacion, fecha_inicio, fecha_finalizacion, fecha_cancelacion, updated_at`

func (r *requestRepository) Create(ctx context.Context, req *domain.AssistanceRequest) error {
	const query = `
        INSERT INTO solicitudes_auxilio
            (tipo, prioridad, estado, latitud, longitud, direccion, observaciones, fotos,
             vehiculo_id, empresa_id, solicitado_por_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, fecha_solicitud, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		req.Type,
		req.Priority,
		req.Status,
		req.Latitude,
		req.Longitude,
		req.Address,
		req.Observations,
		req.PhotoRefs,
		req.VehicleID,
		req.CompanyID,
		req.RequestedByID,
	).Scan(&req.ID, &req.RequestedAt, &req.UpdatedAt)
}

func (r *requestRepository) Update(ctx context.Context, req *domain.AssistanceRequest) error {
	const query = `
        UPDATE solicitudes_auxilio SET
            estado=$1, observaciones=$2, proveedor_id=$3, vehiculo_proveedor_id=$4, atendido_por_id=$5,
            costo_final=$6, calificacion=$7, comentario_cliente=$8, motivo_cancelacion=$9,
            fecha_asignacion=$10, fecha_inicio=$11, fecha_finalizacion=$12, fecha_cancelacion=$13,
            updated_at=NOW()
        WHERE id=$14`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		req.Status,
		req.Observations,
		req.ProviderID,
		req.ResourceID,
		req.OperatorID,
		req.FinalCost,
		req.Rating,
		req.RatingComment,
		req.CancelReason,
		req.AssignedAt,
		req.StartedAt,
		req.FinalizedAt,
		req.CancelledAt,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.AssistanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM solicitudes_auxilio WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.AssistanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM solicitudes_auxilio WHERE id=$1 FOR UPDATE`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.AssistanceRequest, error) {
	var req domain.AssistanceRequest
	if err := scanRequest(dbFrom(ctx, r.pool).QueryRow(ctx, query, arg), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func scanRequest(row pgx.Row, req *domain.AssistanceRequest) error {
	return row.Scan(
		&req.ID,
		&req.Type,
		&req.Priority,
		&req.Status,
		&req.Latitude,
		&req.Longitude,
		&req.Address,
		&req.Observations,
		&req.PhotoRefs,
		&req.VehicleID,
		&req.CompanyID,
		&req.RequestedByID,
		&req.ProviderID,
		&req.ResourceID,
		&req.OperatorID,
		&req.FinalCost,
		&req.Rating,
		&req.RatingComment,
		&req.CancelReason,
		&req.RequestedAt,
		&req.AssignedAt,
		&req.StartedAt,
		&req.FinalizedAt,
		&req.CancelledAt,
		&req.UpdatedAt,
	)
}

func buildRequestClauses(filter RequestFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("estado=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("tipo=$%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("empresa_id=$%d", len(args)))
	}
	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		clauses = append(clauses, fmt.Sprintf("proveedor_id=$%d", len(args)))
	}
	if filter.VehicleID != nil {
		args = append(args, *filter.VehicleID)
		clauses = append(clauses, fmt.Sprintf("vehiculo_id=$%d", len(args)))
	}
	return clauses, args
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.AssistanceRequest, error) {
	clauses, args := buildRequestClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM solicitudes_auxilio WHERE %s ORDER BY fecha_solicitud DESC LIMIT %d OFFSET %d`,
		requestColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssistanceRequest
	for rows.Next() {
		var req domain.AssistanceRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *requestRepository) CountWithFilter(ctx context.Context, filter RequestFilter) (int64, error) {
	clauses, args := buildRequestClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM solicitudes_auxilio WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *requestRepository) ProviderRatingAverage(ctx context.Context, providerID string) (float64, int64, error) {
	const query = `
        SELECT COALESCE(AVG(calificacion), 0), COUNT(calificacion)
        FROM solicitudes_auxilio
        WHERE proveedor_id=$1 AND calificacion IS NOT NULL`
	var avg float64
	var count int64
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, providerID).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

func (r *requestRepository) StatusCountsByProvider(ctx context.Context, providerID string) (map[domain.RequestStatus]int64, error) {
	const query = `
        SELECT estado, COUNT(*) FROM solicitudes_auxilio
        WHERE proveedor_id=$1 GROUP BY estado`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var status domain.RequestStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *requestRepository) RevenueByProvider(ctx context.Context, providerID string) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(costo_final), 0) FROM solicitudes_auxilio
        WHERE proveedor_id=$1 AND estado=$2 AND costo_final IS NOT NULL`
	var revenue float64
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, providerID, domain.RequestStatusFinalized).Scan(&revenue); err != nil {
		return 0, err
	}
	return revenue, nil
}
