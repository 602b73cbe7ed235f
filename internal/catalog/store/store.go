// Package store persists the questionnaire catalog. Versions are append-only:
// implementations insert new rows and never update existing version content.
package store

import (
	"context"

	"vigil/internal/catalog/models"
	id "vigil/pkg/domain"
)

// Store is the catalog persistence contract. ListTemplates returns templates
// in id-ascending order so template resolution stays deterministic when more
// than one template's rules pass.
type Store interface {
	CreateAspect(ctx context.Context, aspect *models.Aspect) error
	CreateAspectVersion(ctx context.Context, version *models.AspectVersion) error
	GetAspect(ctx context.Context, aspectID id.AspectID) (*models.Aspect, error)
	GetAspectVersion(ctx context.Context, versionID id.AspectVersionID) (*models.AspectVersion, error)
	LatestAspectVersion(ctx context.Context, aspectID id.AspectID) (*models.AspectVersion, error)

	CreateTemplate(ctx context.Context, template *models.Template) error
	CreateTemplateVersion(ctx context.Context, version *models.TemplateVersion) error
	GetTemplate(ctx context.Context, templateID id.TemplateID) (*models.Template, error)
	GetTemplateVersion(ctx context.Context, versionID id.TemplateVersionID) (*models.TemplateVersion, error)
	LatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
}
