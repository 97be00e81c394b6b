package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

const (
	swedenName = "Fjernlager - Leveres innen 4-6 dager"
	vaasaName  = "Fjernlager - Leveres innen 6-8 dager"
)

// --- Mock implementations shared by service tests ---

// mockCatalog is an in-memory catalog. Adjustments and activations
// change its state so repeated runs observe their own effects.
type mockCatalog struct {
	mu sync.Mutex

	variants  map[string][]domain.InventorySnapshot
	locations []domain.Location

	lookupErr        map[string]error
	panicOn          string
	listErr          error
	activateErrors   []domain.UserError
	activateEmptyID  bool
	adjustErr        error
	adjustUserErrors []domain.UserError

	lookups     []string
	listCalls   int
	activations []string
	adjustments []domain.AdjustmentRequest

	inFlight    int
	maxInFlight int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		variants:  make(map[string][]domain.InventorySnapshot),
		lookupErr: make(map[string]error),
		locations: []domain.Location{
			{ID: "loc-main", Name: "Main warehouse"},
			{ID: "loc-se", Name: swedenName},
			{ID: "loc-va", Name: vaasaName},
		},
	}
}

// addVariant tracks sku at the given location names and quantities.
func (m *mockCatalog) addVariant(sku string, levels map[string]int64) {
	snapshot := domain.InventorySnapshot{
		VariantID:       fmt.Sprintf("variant-%s-%d", sku, len(m.variants[sku])),
		SKU:             sku,
		InventoryItemID: fmt.Sprintf("item-%s-%d", sku, len(m.variants[sku])),
	}
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		loc, ok := domain.FindLocation(m.locations, name)
		if !ok {
			loc = domain.Location{ID: "loc-" + name, Name: name}
			m.locations = append(m.locations, loc)
		}
		snapshot.Levels = append(snapshot.Levels, domain.InventoryLevel{
			LocationID:   loc.ID,
			LocationName: loc.Name,
			Available:    levels[name],
		})
	}
	m.variants[sku] = append(m.variants[sku], snapshot)
}

// available returns the tracked quantity of the first variant of sku.
func (m *mockCatalog) available(sku, locationName string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.variants[sku] {
		if l, ok := v.Level(locationName); ok {
			return l.Available, true
		}
	}
	return 0, false
}

func (m *mockCatalog) enter() func() {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}
}

func (m *mockCatalog) LookupVariants(_ context.Context, _ domain.Tenant, sku string) ([]domain.InventorySnapshot, error) {
	defer m.enter()()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups = append(m.lookups, sku)
	if sku == m.panicOn {
		panic("catalog exploded")
	}
	if err := m.lookupErr[sku]; err != nil {
		return nil, err
	}

	variants := m.variants[sku]
	out := make([]domain.InventorySnapshot, len(variants))
	for i, v := range variants {
		v.Levels = append([]domain.InventoryLevel(nil), v.Levels...)
		out[i] = v
	}
	return out, nil
}

func (m *mockCatalog) ListLocations(_ context.Context, _ domain.Tenant) ([]domain.Location, error) {
	defer m.enter()()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Location(nil), m.locations...), nil
}

func (m *mockCatalog) ActivateInventory(_ context.Context, _ domain.Tenant, itemID, locationID string) (string, []domain.UserError, error) {
	defer m.enter()()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activations = append(m.activations, locationID)
	if len(m.activateErrors) > 0 {
		return "", m.activateErrors, nil
	}
	if m.activateEmptyID {
		return "", nil, nil
	}

	loc, _ := m.locationByID(locationID)
	m.updateVariant(itemID, func(v *domain.InventorySnapshot) {
		v.Levels = append(v.Levels, domain.InventoryLevel{LocationID: loc.ID, LocationName: loc.Name})
	})
	return locationID, nil, nil
}

func (m *mockCatalog) AdjustQuantities(_ context.Context, _ domain.Tenant, req domain.AdjustmentRequest) ([]domain.UserError, error) {
	defer m.enter()()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adjustments = append(m.adjustments, req)
	if m.adjustErr != nil {
		return nil, m.adjustErr
	}
	if len(m.adjustUserErrors) > 0 {
		return m.adjustUserErrors, nil
	}

	for _, c := range req.Changes {
		m.updateVariant(c.InventoryItemID, func(v *domain.InventorySnapshot) {
			for i := range v.Levels {
				if v.Levels[i].LocationID == c.LocationID {
					v.Levels[i].Available += c.Delta
				}
			}
		})
	}
	return nil, nil
}

func (m *mockCatalog) locationByID(id string) (domain.Location, bool) {
	for _, l := range m.locations {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Location{}, false
}

func (m *mockCatalog) updateVariant(itemID string, fn func(*domain.InventorySnapshot)) {
	for sku, variants := range m.variants {
		for i := range variants {
			if variants[i].InventoryItemID == itemID {
				fn(&m.variants[sku][i])
			}
		}
	}
}

func (m *mockCatalog) adjustCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.adjustments)
}

// mockTenantStore implements driven.TenantStore.
type mockTenantStore struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
	listErr error
}

func newMockTenantStore(shops ...string) *mockTenantStore {
	s := &mockTenantStore{tenants: make(map[string]domain.Tenant)}
	for _, shop := range shops {
		s.tenants[shop] = domain.Tenant{Shop: shop, AccessToken: "token-" + shop}
	}
	return s
}

func (s *mockTenantStore) Save(_ context.Context, tenant domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.Shop] = tenant
	return nil
}

func (s *mockTenantStore) Get(_ context.Context, shop string) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[shop]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *mockTenantStore) List(_ context.Context) ([]domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shop < out[j].Shop })
	return out, nil
}

func (s *mockTenantStore) Delete(_ context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants, shop)
	return nil
}

// mockFetcher implements driven.FeedFetcher.
type mockFetcher struct {
	mu       sync.Mutex
	err      error
	requests []driven.FetchRequest
	block    chan struct{}
	started  chan struct{}
}

func (f *mockFetcher) Fetch(ctx context.Context, req driven.FetchRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *mockFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// mockDecoder implements driven.FeedDecoder over a fixed record list.
type mockDecoder struct {
	records []domain.FeedRecord
	openErr error
	failAt  int // 1-based record position returning a decode error, 0 for none
	opens   int
	onNext  func(n int)
}

func (d *mockDecoder) Open(_ context.Context, path string) (driven.RecordStream, error) {
	d.opens++
	if d.openErr != nil {
		return nil, &domain.DecodeError{Path: path, Err: d.openErr}
	}
	return &mockStream{decoder: d, path: path}, nil
}

type mockStream struct {
	decoder *mockDecoder
	path    string
	pos     int
	closed  bool
}

func (s *mockStream) Next() (domain.FeedRecord, error) {
	if s.closed {
		return nil, errors.New("stream closed")
	}
	if s.decoder.failAt > 0 && s.pos+1 == s.decoder.failAt {
		return nil, &domain.DecodeError{Path: s.path, Line: s.pos + 2, Err: errors.New("bare quote")}
	}
	if s.pos >= len(s.decoder.records) {
		return nil, io.EOF
	}
	r := s.decoder.records[s.pos]
	s.pos++
	if s.decoder.onNext != nil {
		s.decoder.onNext(s.pos)
	}
	return r, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

// mockRunStore implements driven.RunStore.
type mockRunStore struct {
	mu   sync.Mutex
	runs map[string]domain.RunResult
	ids  []string
	err  error
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[string]domain.RunResult)}
}

func (s *mockRunStore) Save(_ context.Context, run *domain.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.runs[run.ID]; !ok {
		s.ids = append(s.ids, run.ID)
	}
	cp := *run
	cp.Tenants = append([]domain.TenantResult(nil), run.Tenants...)
	s.runs[run.ID] = cp
	return nil
}

func (s *mockRunStore) Get(_ context.Context, id string) (*domain.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *mockRunStore) List(_ context.Context, limit int) ([]domain.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RunResult
	for i := len(s.ids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.ids[i]])
	}
	return out, nil
}

// mockObserver implements driven.RunObserver.
type mockObserver struct {
	mu       sync.Mutex
	outcomes map[domain.RecordOutcome]int
	finished []domain.RunState
}

func newMockObserver() *mockObserver {
	return &mockObserver{outcomes: make(map[domain.RecordOutcome]int)}
}

func (o *mockObserver) RecordHandled(_ domain.RunMode, outcome domain.RecordOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *mockObserver) RunFinished(run *domain.RunResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, run.State)
}

// Ensure mocks implement interfaces
var (
	_ driven.Catalog     = (*mockCatalog)(nil)
	_ driven.TenantStore = (*mockTenantStore)(nil)
	_ driven.FeedFetcher = (*mockFetcher)(nil)
	_ driven.FeedDecoder = (*mockDecoder)(nil)
	_ driven.RunStore    = (*mockRunStore)(nil)
	_ driven.RunObserver = (*mockObserver)(nil)
)

// row builds a feed record from alternating column/value pairs.
func row(kv ...string) domain.FeedRecord {
	r := make(domain.FeedRecord, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = kv[i+1]
	}
	return r
}
