package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"vigil/internal/catalog/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
)

// InMemory is a map-backed catalog store for unit tests and local runs.
type InMemory struct {
	mu               sync.RWMutex
	aspects          map[id.AspectID]*models.Aspect
	aspectVersions   map[id.AspectVersionID]*models.AspectVersion
	templates        map[id.TemplateID]*models.Template
	templateVersions map[id.TemplateVersionID]*models.TemplateVersion
}

func NewInMemory() *InMemory {
	return &InMemory{
		aspects:          make(map[id.AspectID]*models.Aspect),
		aspectVersions:   make(map[id.AspectVersionID]*models.AspectVersion),
		templates:        make(map[id.TemplateID]*models.Template),
		templateVersions: make(map[id.TemplateVersionID]*models.TemplateVersion),
	}
}

func (s *InMemory) CreateAspect(_ context.Context, aspect *models.Aspect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.aspects[aspect.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.aspects {
		if existing.Code == aspect.Code {
			return sentinel.ErrConflict
		}
	}
	cloned := *aspect
	s.aspects[aspect.ID] = &cloned
	return nil
}

func (s *InMemory) CreateAspectVersion(_ context.Context, version *models.AspectVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.aspectVersions[version.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.aspectVersions {
		if existing.AspectID == version.AspectID && existing.Version == version.Version {
			return sentinel.ErrConflict
		}
	}
	cloned := *version
	s.aspectVersions[version.ID] = &cloned
	return nil
}

func (s *InMemory) GetAspect(_ context.Context, aspectID id.AspectID) (*models.Aspect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	aspect, ok := s.aspects[aspectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *aspect
	return &cloned, nil
}

func (s *InMemory) GetAspectVersion(_ context.Context, versionID id.AspectVersionID) (*models.AspectVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.aspectVersions[versionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *version
	return &cloned, nil
}

func (s *InMemory) LatestAspectVersion(_ context.Context, aspectID id.AspectID) (*models.AspectVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.AspectVersion
	for _, version := range s.aspectVersions {
		if version.AspectID != aspectID {
			continue
		}
		if latest == nil || version.Version > latest.Version {
			latest = version
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	cloned := *latest
	return &cloned, nil
}

func (s *InMemory) CreateTemplate(_ context.Context, template *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[template.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.templates {
		if existing.Code == template.Code {
			return sentinel.ErrConflict
		}
	}
	cloned := *template
	s.templates[template.ID] = &cloned
	return nil
}

func (s *InMemory) CreateTemplateVersion(_ context.Context, version *models.TemplateVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templateVersions[version.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.templateVersions {
		if existing.TemplateID == version.TemplateID && existing.Version == version.Version {
			return sentinel.ErrConflict
		}
	}
	cloned := *version
	s.templateVersions[version.ID] = &cloned
	return nil
}

func (s *InMemory) GetTemplate(_ context.Context, templateID id.TemplateID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	template, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *template
	return &cloned, nil
}

func (s *InMemory) GetTemplateVersion(_ context.Context, versionID id.TemplateVersionID) (*models.TemplateVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.templateVersions[versionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *version
	return &cloned, nil
}

func (s *InMemory) LatestTemplateVersion(_ context.Context, templateID id.TemplateID) (*models.TemplateVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.TemplateVersion
	for _, version := range s.templateVersions {
		if version.TemplateID != templateID {
			continue
		}
		if latest == nil || version.Version > latest.Version {
			latest = version
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	cloned := *latest
	return &cloned, nil
}

func (s *InMemory) ListTemplates(_ context.Context) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]*models.Template, 0, len(s.templates))
	for _, template := range s.templates {
		cloned := *template
		templates = append(templates, &cloned)
	}
	sort.Slice(templates, func(i, j int) bool {
		a, b := uuid.UUID(templates[i].ID), uuid.UUID(templates[j].ID)
		return bytes.Compare(a[:], b[:]) < 0
	})
	return templates, nil
}
