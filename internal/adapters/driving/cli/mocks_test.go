package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	mu       sync.Mutex
	requests []domain.RunRequest
	result   *domain.RunResult
	err      error
	runCh    chan domain.RunRequest
}

func (m *mockReconciler) Run(_ context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.runCh != nil {
		select {
		case m.runCh <- req:
		default:
		}
	}
	return m.result, m.err
}

func (m *mockReconciler) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{State: domain.RunStateIdle}, nil
}

func (m *mockReconciler) Requests() []domain.RunRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RunRequest(nil), m.requests...)
}

// mockHistory implements driving.RunHistory for testing.
type mockHistory struct {
	runs      []domain.RunResult
	lastLimit int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.RunResult, error) {
	m.lastLimit = limit
	return m.runs, nil
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunResult, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockTenantService implements driving.TenantService for testing.
type mockTenantService struct {
	tenants map[string]domain.Tenant
}

func newMockTenantService(tenants ...domain.Tenant) *mockTenantService {
	m := &mockTenantService{tenants: make(map[string]domain.Tenant)}
	for _, t := range tenants {
		m.tenants[t.Shop] = t
	}
	return m
}

func (m *mockTenantService) Add(_ context.Context, shop, token string) (*domain.Tenant, error) {
	t := domain.Tenant{Shop: shop, AccessToken: token}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	m.tenants[shop] = t
	return &t, nil
}

func (m *mockTenantService) List(_ context.Context) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTenantService) Remove(_ context.Context, shop string) error {
	if _, ok := m.tenants[shop]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tenants, shop)
	return nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockServer implements Server for testing.
type mockServer struct {
	addr string
}

func (m *mockServer) Run(_ context.Context, addr string) error {
	m.addr = addr
	return nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	return nil
}

// setServices installs s for the duration of the test and resets
// flag variables that persist between executions.
func setServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(Services{})
		runFeedFile = ""
		serveAddr = ""
		tenantAddToken = ""
		historyLimit = 20
		historyJSON = false
		watchPattern = "*.csv"
		watchSettle = 2 * time.Second
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
