package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/college-predictor/prompt-manager-fe/internal/domain/model"
)

// BackendDataAPI is the slice of the gateway the app store depends on.
type BackendDataAPI interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.CreateProjectInput) error
	DeleteProject(ctx context.Context, projectID int) error
	ListModels(ctx context.Context) ([]model.Model, error)
}

// ProjectsState is the cached projects resource with its loading and
// error flags.
type ProjectsState struct {
	Items   []model.Project
	Loading bool
	Err     string
}

// ModelsState is the cached models resource with its loading and error
// flags.
type ModelsState struct {
	Items   []model.Model
	Loading bool
	Err     string
}

// AppStore caches fetched domain data per resource. Fetches are
// idempotent and safe to repeat. The store does not deduplicate
// concurrent in-flight fetches; it has no notion of request identity,
// so that responsibility stays with callers.
type AppStore struct {
	backend BackendDataAPI
	logger  *slog.Logger

	mu       sync.Mutex
	projects ProjectsState
	models   ModelsState
}

// NewAppStore constructs an AppStore.
func NewAppStore(backend BackendDataAPI, logger *slog.Logger) (*AppStore, error) {
	if backend == nil {
		return nil, errors.New("backend data API is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppStore{backend: backend, logger: logger}, nil
}

// FetchProjects loads the projects resource. On failure the previous
// items remain cached and the error message is surfaced on the state.
func (s *AppStore) FetchProjects(ctx context.Context) error {
	s.mu.Lock()
	s.projects.Loading = true
	s.mu.Unlock()

	items, err := s.backend.ListProjects(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects.Loading = false
	if err != nil {
		s.projects.Err = err.Error()
		return err
	}
	s.projects.Items = items
	s.projects.Err = ""
	return nil
}

// CreateProject creates a project and refreshes the cached list on
// success.
func (s *AppStore) CreateProject(ctx context.Context, in model.CreateProjectInput) error {
	if err := s.backend.CreateProject(ctx, in); err != nil {
		s.mu.Lock()
		s.projects.Err = err.Error()
		s.mu.Unlock()
		return err
	}
	return s.FetchProjects(ctx)
}

// DeleteProject deletes a project and drops it from the cached list on
// success.
func (s *AppStore) DeleteProject(ctx context.Context, projectID int) error {
	if err := s.backend.DeleteProject(ctx, projectID); err != nil {
		s.mu.Lock()
		s.projects.Err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.projects.Items[:0:0]
	for _, p := range s.projects.Items {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	s.projects.Items = kept
	s.projects.Err = ""
	return nil
}

// FetchModels loads the models resource.
func (s *AppStore) FetchModels(ctx context.Context) error {
	s.mu.Lock()
	s.models.Loading = true
	s.mu.Unlock()

	items, err := s.backend.ListModels(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models.Loading = false
	if err != nil {
		s.models.Err = err.Error()
		return err
	}
	s.models.Items = items
	s.models.Err = ""
	return nil
}

// Projects returns a snapshot of the projects resource.
func (s *AppStore) Projects() ProjectsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.projects
	state.Items = append([]model.Project(nil), s.projects.Items...)
	return state
}

// Models returns a snapshot of the models resource.
func (s *AppStore) Models() ModelsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.models
	state.Items = append([]model.Model(nil), s.models.Items...)
	return state
}
