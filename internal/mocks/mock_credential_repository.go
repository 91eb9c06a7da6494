package mocks

import (
	"context"
	"sync"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockCredentialRepository implements domain.CredentialRepository for
// testing. Default behavior is a thread-safe in-memory store whose
// UpdateConditional is a real compare-and-set, so concurrency properties
// can be exercised without a database. Any method can be overridden with
// its Func field.
type MockCredentialRepository struct {
	CreateFunc                  func(ctx context.Context, cred *domain.AccessCredential) error
	FindByIDFunc                func(ctx context.Context, id string) (*domain.AccessCredential, error)
	FindByCodeFunc              func(ctx context.Context, codeValue string) (*domain.AccessCredential, error)
	FindActiveByApplicationFunc func(ctx context.Context, applicationID string) (*domain.AccessCredential, error)
	CodeValueTakenFunc          func(ctx context.Context, codeValue string) (bool, error)
	UpdateConditionalFunc       func(ctx context.Context, cred *domain.AccessCredential, expectedVersion int64) error

	mu    sync.Mutex
	store map[string]*domain.AccessCredential
}

// NewMockCredentialRepository creates a new MockCredentialRepository
func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{store: make(map[string]*domain.AccessCredential)}
}

// Seed places a credential directly into the in-memory store
func (m *MockCredentialRepository) Seed(cred *domain.AccessCredential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl := *cred
	m.store[cred.ID] = &cl
}

// Get returns a copy of a stored credential
func (m *MockCredentialRepository) Get(id string) *domain.AccessCredential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.store[id]; ok {
		cl := *c
		return &cl
	}
	return nil
}

// Create stores a credential
func (m *MockCredentialRepository) Create(ctx context.Context, cred *domain.AccessCredential) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cred)
	}
	m.Seed(cred)
	return nil
}

// FindByID returns a copy of the credential with the given id
func (m *MockCredentialRepository) FindByID(ctx context.Context, id string) (*domain.AccessCredential, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	if c := m.Get(id); c != nil {
		return c, nil
	}
	return nil, domain.ErrCredentialNotFound
}

// FindByCode returns a copy of the credential holding codeValue
func (m *MockCredentialRepository) FindByCode(ctx context.Context, codeValue string) (*domain.AccessCredential, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, codeValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.CodeValue == codeValue {
			cl := *c
			return &cl, nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

// FindActiveByApplication returns the Active credential of an application
func (m *MockCredentialRepository) FindActiveByApplication(ctx context.Context, applicationID string) (*domain.AccessCredential, error) {
	if m.FindActiveByApplicationFunc != nil {
		return m.FindActiveByApplicationFunc(ctx, applicationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.ApplicationID == applicationID && c.Status == domain.CredentialActive {
			cl := *c
			return &cl, nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

// CodeValueTaken reports whether a live credential holds codeValue
func (m *MockCredentialRepository) CodeValueTaken(ctx context.Context, codeValue string) (bool, error) {
	if m.CodeValueTakenFunc != nil {
		return m.CodeValueTakenFunc(ctx, codeValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.CodeValue == codeValue &&
			(c.Status == domain.CredentialActive || c.Status == domain.CredentialExhausted) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateConditional performs a real compare-and-set against the in-memory
// store, mirroring the transactional WHERE version = ? update in the SQL
// implementation.
func (m *MockCredentialRepository) UpdateConditional(ctx context.Context, cred *domain.AccessCredential, expectedVersion int64) error {
	if m.UpdateConditionalFunc != nil {
		return m.UpdateConditionalFunc(ctx, cred, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.store[cred.ID]
	if !ok {
		return domain.ErrCredentialNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	stored.UsageCount = cred.UsageCount
	stored.Status = cred.Status
	stored.ValidUntil = cred.ValidUntil
	stored.Version = expectedVersion + 1
	cred.Version = stored.Version
	return nil
}

// Compile-time interface compliance verification
var _ domain.CredentialRepository = (*MockCredentialRepository)(nil)
