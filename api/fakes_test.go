package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/store"
)

// memDirectory is a map-backed auth.Directory plus the api store interfaces,
// so one fixture can stand in for the whole persistence layer.
type memDirectory struct {
	mu       sync.Mutex
	users    map[string]*auth.Principal
	digests  map[string]string // keyed by email
	projects map[string]*store.Project
	comments map[string]*store.Comment
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:    make(map[string]*auth.Principal),
		digests:  make(map[string]string),
		projects: make(map[string]*store.Project),
		comments: make(map[string]*store.Comment),
	}
}

func (m *memDirectory) FindByID(_ context.Context, id string) (*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memDirectory) FindByEmail(_ context.Context, email string) (*auth.Principal, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.users {
		if p.Email == email {
			return p, m.digests[email], nil
		}
	}
	return nil, "", nil
}

func (m *memDirectory) Create(_ context.Context, p *auth.Principal, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == p.Email {
			return auth.ErrEmailTaken
		}
	}
	m.users[p.ID] = p
	m.digests[p.Email] = digest
	return nil
}

func (m *memDirectory) List(_ context.Context) ([]*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*auth.Principal, 0, len(m.users))
	for _, p := range m.users {
		out = append(out, p)
	}
	return out, nil
}

func (m *memDirectory) Update(_ context.Context, id string, upd store.UserUpdate) (*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Email != nil {
		delete(m.digests, p.Email)
		p.Email = *upd.Email
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memDirectory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memDirectory) addUser(role string) *auth.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &auth.Principal{
		ID:    uuid.New().String(),
		Email: uuid.New().String() + "@example.com",
		Name:  "Test User",
		Role:  role,
	}
	m.users[p.ID] = p
	return p
}

// Project store methods.

func (m *memDirectory) CreateProject(_ context.Context, p *store.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memDirectory) FindProject(_ context.Context, id string) (*store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id], nil
}

func (m *memDirectory) ListProjects(_ context.Context) ([]*store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memDirectory) UpdateProject(_ context.Context, id string, upd store.ProjectUpdate) (*store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memDirectory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memDirectory) AddProjectMember(_ context.Context, projectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return store.ErrNotFound
	}
	for _, member := range p.Members {
		if member == userID {
			return nil
		}
	}
	p.Members = append(p.Members, userID)
	return nil
}

// projectStore adapts memDirectory to the ProjectStore interface.
type projectStore struct{ *memDirectory }

func (s projectStore) Create(ctx context.Context, p *store.Project) error {
	return s.CreateProject(ctx, p)
}
func (s projectStore) FindByID(ctx context.Context, id string) (*store.Project, error) {
	return s.FindProject(ctx, id)
}
func (s projectStore) List(ctx context.Context) ([]*store.Project, error) {
	return s.ListProjects(ctx)
}
func (s projectStore) Update(ctx context.Context, id string, upd store.ProjectUpdate) (*store.Project, error) {
	return s.UpdateProject(ctx, id, upd)
}
func (s projectStore) Delete(ctx context.Context, id string) error {
	return s.DeleteProject(ctx, id)
}
func (s projectStore) AddMember(ctx context.Context, projectID, userID string) error {
	return s.AddProjectMember(ctx, projectID, userID)
}

// commentStore adapts memDirectory to the CommentStore interface.
type commentStore struct{ *memDirectory }

func (s commentStore) Create(_ context.Context, c *store.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = c
	return nil
}

func (s commentStore) FindByID(_ context.Context, id string) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments[id], nil
}

func (s commentStore) ListByProject(_ context.Context, projectID string) ([]*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.Comment
	for _, c := range s.comments {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s commentStore) UpdateBody(_ context.Context, id, body string) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.Body = body
	c.UpdatedAt = time.Now()
	return c, nil
}

func (s commentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

var (
	_ UserStore    = (*memDirectory)(nil)
	_ ProjectStore = projectStore{}
	_ CommentStore = commentStore{}
)
