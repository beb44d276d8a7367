// Package testutil provides in-memory implementations of the repository
// interfaces and a miniredis-backed cart store for tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/register"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/cache"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ── cash registers ───────────────────────────────────────────────────────────

// RegisterRepo is an in-memory CashRegisterRepository
type RegisterRepo struct {
	mu            sync.Mutex
	Registers     map[uuid.UUID]entity.CashRegister
	Movements     map[uuid.UUID][]entity.CashMovement
	Conciliations map[uuid.UUID][]entity.CashConciliation
	clock         time.Time

	// WriteErr is returned by every write while set
	WriteErr error
	// HideOpen makes GetOpenRegister miss, as if another device opened concurrently
	HideOpen bool
}

// NewRegisterRepo creates an empty RegisterRepo
func NewRegisterRepo() *RegisterRepo {
	return &RegisterRepo{
		Registers:     make(map[uuid.UUID]entity.CashRegister),
		Movements:     make(map[uuid.UUID][]entity.CashMovement),
		Conciliations: make(map[uuid.UUID][]entity.CashConciliation),
		clock:         time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *RegisterRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *RegisterRepo) GetOpenRegister(_ context.Context, businessID uuid.UUID) (*entity.CashRegister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.HideOpen {
		return nil, nil
	}
	for _, r := range f.Registers {
		if r.BusinessID == businessID && r.IsOpen() {
			reg := r
			return &reg, nil
		}
	}
	return nil, nil
}

func (f *RegisterRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.CashRegister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Registers[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *RegisterRepo) List(_ context.Context, businessID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashRegister, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []entity.CashRegister
	for _, r := range f.Registers {
		if r.BusinessID == businessID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })

	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *RegisterRepo) CreateRegister(_ context.Context, reg *entity.CashRegister) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	for _, r := range f.Registers {
		if r.BusinessID == reg.BusinessID && r.IsOpen() {
			return apperror.ErrAlreadyOpen
		}
	}
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	f.Registers[reg.ID] = *reg
	return nil
}

func (f *RegisterRepo) CloseRegister(_ context.Context, reg *entity.CashRegister) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	stored, ok := f.Registers[reg.ID]
	if !ok || !stored.IsOpen() {
		return apperror.ErrNotOpen
	}
	expected := register.ExpectedBalance(stored.OpeningBalance, f.Movements[reg.ID])
	reg.ExpectedAtClose = &expected
	stored.State = enum.RegisterStateClosed
	stored.ClosingBalance = reg.ClosingBalance
	stored.ExpectedAtClose = &expected
	stored.ClosedBy = reg.ClosedBy
	stored.ClosedAt = reg.ClosedAt
	f.Registers[reg.ID] = stored
	return nil
}

func (f *RegisterRepo) AppendMovement(_ context.Context, m *entity.CashMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	stored, ok := f.Registers[m.RegisterID]
	if !ok {
		return apperror.NewNotFoundError("Cash register")
	}
	if !stored.IsOpen() {
		return apperror.ErrNotOpen
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = f.tick()
	f.Movements[m.RegisterID] = append(f.Movements[m.RegisterID], *m)
	return nil
}

func (f *RegisterRepo) ListMovements(_ context.Context, registerID uuid.UUID) ([]entity.CashMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.Movements[registerID]
	out := make([]entity.CashMovement, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

func (f *RegisterRepo) CreateConciliation(_ context.Context, c *entity.CashConciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	c.CreatedAt = f.tick()
	f.Conciliations[c.RegisterID] = append(f.Conciliations[c.RegisterID], *c)
	return nil
}

func (f *RegisterRepo) ListConciliations(_ context.Context, registerID uuid.UUID) ([]entity.CashConciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CashConciliation(nil), f.Conciliations[registerID]...), nil
}

// ── catalog ──────────────────────────────────────────────────────────────────

// Catalog is an in-memory repository.Catalog
type Catalog struct {
	mu     sync.Mutex
	prices map[uuid.UUID]decimal.Decimal
	names  map[uuid.UUID]string
	Calls  int
}

// NewCatalog creates an empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{
		prices: make(map[uuid.UUID]decimal.Decimal),
		names:  make(map[uuid.UUID]string),
	}
}

// Add registers a new product at price and returns its id
func (f *Catalog) Add(price string) uuid.UUID {
	id := uuid.New()
	f.Set(id, price)
	return id
}

// AddNamed registers a new product with a display name
func (f *Catalog) AddNamed(name, price string) uuid.UUID {
	id := f.Add(price)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[id] = name
	return id
}

func (f *Catalog) GetNames(_ context.Context, _ uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make(map[uuid.UUID]string, len(productIDs))
	for _, id := range productIDs {
		if n, ok := f.names[id]; ok {
			names[id] = n
		}
	}
	return names, nil
}

// Set changes the price of a product
func (f *Catalog) Set(id uuid.UUID, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = Dec(price)
}

func (f *Catalog) GetUnitPrice(_ context.Context, _, productID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	p, ok := f.prices[productID]
	if !ok {
		return decimal.Zero, apperror.NewNotFoundError("Product")
	}
	return p, nil
}

// ── sales ────────────────────────────────────────────────────────────────────

// SaleRepo is an in-memory SaleRepository
type SaleRepo struct {
	mu       sync.Mutex
	Sales    map[uuid.UUID]entity.Sale
	WriteErr error
}

// NewSaleRepo creates an empty SaleRepo
func NewSaleRepo() *SaleRepo {
	return &SaleRepo{Sales: make(map[uuid.UUID]entity.Sale)}
}

func (f *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	f.Sales[sale.ID] = *sale
	return nil
}

func (f *SaleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Sales[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *SaleRepo) List(_ context.Context, businessID uuid.UUID, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Sale
	for _, s := range f.Sales {
		if s.BusinessID != businessID {
			continue
		}
		if params.PaymentMethod != "" && s.PaymentMethod != params.PaymentMethod {
			continue
		}
		if params.StartDate != nil && s.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && s.CreatedAt.After(*params.EndDate) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (f *SaleRepo) Cancel(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	s, ok := f.Sales[id]
	if !ok || s.Status != enum.SaleStatusPaid {
		return apperror.ErrAlreadyCancelled
	}
	s.Status = enum.SaleStatusCancelled
	f.Sales[id] = s
	return nil
}

func (f *SaleRepo) DailyTotals(_ context.Context, businessID uuid.UUID, since time.Time) ([]repository.DailyTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byDay := map[string]*repository.DailyTotal{}
	for _, s := range f.Sales {
		if s.BusinessID != businessID || s.Status != enum.SaleStatusPaid || s.CreatedAt.Before(since) {
			continue
		}
		day := time.Date(s.CreatedAt.Year(), s.CreatedAt.Month(), s.CreatedAt.Day(), 0, 0, 0, 0, time.UTC)
		key := day.Format(time.DateOnly)
		if byDay[key] == nil {
			byDay[key] = &repository.DailyTotal{Day: day, Total: decimal.Zero}
		}
		byDay[key].Total = byDay[key].Total.Add(s.Total)
		byDay[key].Count++
	}
	out := make([]repository.DailyTotal, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// ── cart store ───────────────────────────────────────────────────────────────

// NewCartStore returns a cart store backed by a miniredis server that stops with the test
func NewCartStore(t *testing.T) repository.CartStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return cache.NewCartStore(client, time.Hour)
}

// ── idempotency ──────────────────────────────────────────────────────────────

// IdempotencyRepo is an in-memory IdempotencyRepository
type IdempotencyRepo struct {
	mu   sync.Mutex
	Keys map[string]entity.IdempotencyKey
}

// NewIdempotencyRepo creates an empty IdempotencyRepo
func NewIdempotencyRepo() *IdempotencyRepo {
	return &IdempotencyRepo{Keys: make(map[string]entity.IdempotencyKey)}
}

func idempotencySlot(key string, operatorID uuid.UUID) string {
	return operatorID.String() + "/" + key
}

func (f *IdempotencyRepo) GetByKey(_ context.Context, key string, operatorID uuid.UUID) (*entity.IdempotencyKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.Keys[idempotencySlot(key, operatorID)]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (f *IdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Keys[idempotencySlot(ikey.Key, ikey.OperatorID)] = *ikey
	return nil
}

func (f *IdempotencyRepo) DeleteExpired(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for slot, k := range f.Keys {
		if k.IsExpired(now) {
			delete(f.Keys, slot)
		}
	}
	return nil
}

var (
	_ repository.IdempotencyRepository  = (*IdempotencyRepo)(nil)
	_ repository.CashRegisterRepository = (*RegisterRepo)(nil)
	_ repository.Catalog                = (*Catalog)(nil)
	_ repository.SaleRepository         = (*SaleRepo)(nil)
)
