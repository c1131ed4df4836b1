package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/events"
	"github.com/spec-kit/assistance-service/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the SQL
// repositories' contracts: missing rows surface as pgx.ErrNoRows and reads
// hand out copies so only Update persists changes.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeRequestRepo struct {
	rows map[string]*domain.AssistanceRequest
	seq  int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: make(map[string]*domain.AssistanceRequest)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.AssistanceRequest) error {
	if req.ID == "" {
		r.seq++
		req.ID = fmt.Sprintf("req-%d", r.seq)
	}
	clone := *req
	r.rows[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *domain.AssistanceRequest) error {
	if _, ok := r.rows[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *req
	r.rows[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.AssistanceRequest, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.AssistanceRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRequestRepo) matches(req *domain.AssistanceRequest, filter repository.RequestFilter) bool {
	if filter.Status != nil && req.Status != *filter.Status {
		return false
	}
	if filter.Type != nil && req.Type != *filter.Type {
		return false
	}
	if filter.CompanyID != nil && req.CompanyID != *filter.CompanyID {
		return false
	}
	if filter.ProviderID != nil && (req.ProviderID == nil || *req.ProviderID != *filter.ProviderID) {
		return false
	}
	if filter.VehicleID != nil && req.VehicleID != *filter.VehicleID {
		return false
	}
	return true
}

func (r *fakeRequestRepo) sortedIDs() []string {
	ids := make([]string, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *fakeRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.AssistanceRequest, error) {
	var out []domain.AssistanceRequest
	for _, id := range r.sortedIDs() {
		if r.matches(r.rows[id], filter) {
			out = append(out, *r.rows[id])
		}
	}
	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeRequestRepo) CountWithFilter(_ context.Context, filter repository.RequestFilter) (int64, error) {
	var count int64
	for _, row := range r.rows {
		if r.matches(row, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) ProviderRatingAverage(_ context.Context, providerID string) (float64, int64, error) {
	var sum float64
	var count int64
	for _, row := range r.rows {
		if row.ProviderID != nil && *row.ProviderID == providerID && row.Rating != nil {
			sum += float64(*row.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (r *fakeRequestRepo) StatusCountsByProvider(_ context.Context, providerID string) (map[domain.RequestStatus]int64, error) {
	counts := make(map[domain.RequestStatus]int64)
	for _, row := range r.rows {
		if row.ProviderID != nil && *row.ProviderID == providerID {
			counts[row.Status]++
		}
	}
	return counts, nil
}

func (r *fakeRequestRepo) RevenueByProvider(_ context.Context, providerID string) (float64, error) {
	var total float64
	for _, row := range r.rows {
		if row.ProviderID != nil && *row.ProviderID == providerID &&
			row.Status == domain.RequestStatusFinalized && row.FinalCost != nil {
			total += *row.FinalCost
		}
	}
	return total, nil
}

type fakeUserRepo struct {
	rows map[string]*domain.User
	seq  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	clone := *user
	r.rows[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.rows[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.rows[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, row := range r.rows {
		if strings.EqualFold(row.Email, email) {
			clone := *row
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	ids := make([]string, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		row := r.rows[id]
		if filter.Role != nil && row.Role != *filter.Role {
			continue
		}
		if filter.CompanyID != nil && (row.CompanyID == nil || *row.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.ProviderID != nil && (row.ProviderID == nil || *row.ProviderID != *filter.ProviderID) {
			continue
		}
		if filter.Active != nil && row.Active != *filter.Active {
			continue
		}
		out = append(out, *row)
	}
	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeUserRepo) ListAvailableOperators(_ context.Context, providerID string) ([]domain.User, error) {
	var out []domain.User
	ids := make([]string, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		row := r.rows[id]
		if row.Role != domain.RoleProviderOperator || !row.Active {
			continue
		}
		if row.ProviderID == nil || *row.ProviderID != providerID {
			continue
		}
		if row.Availability != domain.AvailabilityAvailable {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeUserRepo) SetAvailability(_ context.Context, id string, availability domain.Availability) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Availability = availability
	return nil
}

type fakeVehicleRepo struct {
	rows map[string]*domain.Vehicle
	seq  int
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{rows: make(map[string]*domain.Vehicle)}
}

func (r *fakeVehicleRepo) Create(_ context.Context, vehicle *domain.Vehicle) error {
	if vehicle.ID == "" {
		r.seq++
		vehicle.ID = fmt.Sprintf("veh-%d", r.seq)
	}
	clone := *vehicle
	r.rows[vehicle.ID] = &clone
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, vehicle *domain.Vehicle) error {
	if _, ok := r.rows[vehicle.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *vehicle
	r.rows[vehicle.ID] = &clone
	return nil
}

func (r *fakeVehicleRepo) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeVehicleRepo) GetByPlate(_ context.Context, plate string) (*domain.Vehicle, error) {
	for _, row := range r.rows {
		if row.Plate == plate {
			clone := *row
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeVehicleRepo) ListByCompany(_ context.Context, companyID string) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, row := range r.rows {
		if row.CompanyID == companyID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) ListAll(_ context.Context) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, row := range r.rows {
		out = append(out, *row)
	}
	return out, nil
}

type fakeProviderRepo struct {
	rows map[string]*domain.Provider
	seq  int
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{rows: make(map[string]*domain.Provider)}
}

func (r *fakeProviderRepo) Create(_ context.Context, provider *domain.Provider) error {
	if provider.ID == "" {
		r.seq++
		provider.ID = fmt.Sprintf("prov-%d", r.seq)
	}
	clone := *provider
	r.rows[provider.ID] = &clone
	return nil
}

func (r *fakeProviderRepo) Update(_ context.Context, provider *domain.Provider) error {
	if _, ok := r.rows[provider.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *provider
	r.rows[provider.ID] = &clone
	return nil
}

func (r *fakeProviderRepo) GetByID(_ context.Context, id string) (*domain.Provider, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeProviderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Provider, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProviderRepo) GetByCUIT(_ context.Context, cuit string) (*domain.Provider, error) {
	for _, row := range r.rows {
		if row.CUIT == cuit {
			clone := *row
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProviderRepo) List(_ context.Context, activeOnly bool) ([]domain.Provider, error) {
	var out []domain.Provider
	for _, row := range r.rows {
		if activeOnly && !row.Active {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeProviderRepo) UpdateRating(_ context.Context, id string, average float64) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.AverageRating = &average
	return nil
}

func (r *fakeProviderRepo) SoftDelete(_ context.Context, id string) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Active = false
	return nil
}

type fakeResourceRepo struct {
	rows      map[string]*domain.ProviderResource
	providers *fakeProviderRepo
	seq       int
}

func newFakeResourceRepo(providers *fakeProviderRepo) *fakeResourceRepo {
	return &fakeResourceRepo{rows: make(map[string]*domain.ProviderResource), providers: providers}
}

func (r *fakeResourceRepo) Create(_ context.Context, resource *domain.ProviderResource) error {
	if resource.ID == "" {
		r.seq++
		resource.ID = fmt.Sprintf("res-%d", r.seq)
	}
	clone := *resource
	r.rows[resource.ID] = &clone
	return nil
}

func (r *fakeResourceRepo) Update(_ context.Context, resource *domain.ProviderResource) error {
	if _, ok := r.rows[resource.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *resource
	r.rows[resource.ID] = &clone
	return nil
}

func (r *fakeResourceRepo) GetByID(_ context.Context, id string) (*domain.ProviderResource, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeResourceRepo) ListByProvider(_ context.Context, providerID string) ([]domain.ProviderResource, error) {
	var out []domain.ProviderResource
	for _, row := range r.rows {
		if row.ProviderID == providerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) ListActiveOfActiveProviders(_ context.Context) ([]domain.ProviderResource, error) {
	var out []domain.ProviderResource
	ids := make([]string, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		row := r.rows[id]
		if !row.Active || row.Status != domain.ResourceStatusActive {
			continue
		}
		if r.providers != nil {
			owner, ok := r.providers.rows[row.ProviderID]
			if !ok || !owner.Active {
				continue
			}
		}
		out = append(out, *row)
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
