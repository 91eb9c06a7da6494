package mocks

import (
	"context"
	"sync"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockApplicationRepository implements domain.ApplicationRepository for
// testing with an in-memory default store and per-method overrides.
type MockApplicationRepository struct {
	CreateFunc   func(ctx context.Context, app *domain.VisitorApplication) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.VisitorApplication, error)
	UpdateFunc   func(ctx context.Context, app *domain.VisitorApplication) error

	mu    sync.Mutex
	store map[string]*domain.VisitorApplication
}

// NewMockApplicationRepository creates a new MockApplicationRepository
func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{store: make(map[string]*domain.VisitorApplication)}
}

// Seed places an application directly into the in-memory store
func (m *MockApplicationRepository) Seed(app *domain.VisitorApplication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl := *app
	m.store[app.ID] = &cl
}

// Get returns a copy of a stored application
func (m *MockApplicationRepository) Get(id string) *domain.VisitorApplication {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.store[id]; ok {
		cl := *a
		return &cl
	}
	return nil
}

// Create stores an application
func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.VisitorApplication) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, app)
	}
	m.Seed(app)
	return nil
}

// FindByID returns a copy of the application with the given id
func (m *MockApplicationRepository) FindByID(ctx context.Context, id string) (*domain.VisitorApplication, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	if a := m.Get(id); a != nil {
		return a, nil
	}
	return nil, domain.ErrApplicationNotFound
}

// Update replaces the stored application
func (m *MockApplicationRepository) Update(ctx context.Context, app *domain.VisitorApplication) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, app)
	}
	m.Seed(app)
	return nil
}

// Compile-time interface compliance verification
var _ domain.ApplicationRepository = (*MockApplicationRepository)(nil)
