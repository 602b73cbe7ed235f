package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vigil/internal/catalog/models"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	txcontext "vigil/pkg/platform/tx"
)

// Postgres persists the catalog with raw SQL. Version rows are insert-only;
// there is deliberately no UPDATE for version content anywhere in this file.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) CreateAspect(ctx context.Context, aspect *models.Aspect) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO aspects (id, code, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(aspect.ID), aspect.Code, aspect.Name, aspect.CreatedAt)
	if err != nil {
		return fmt.Errorf("create aspect: %w", err)
	}
	return nil
}

func (s *Postgres) CreateAspectVersion(ctx context.Context, version *models.AspectVersion) error {
	exec := s.execer(ctx)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO aspect_versions (id, aspect_id, version, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(version.ID), uuid.UUID(version.AspectID), version.Version, version.Name, version.Description, version.CreatedAt)
	if err != nil {
		return fmt.Errorf("create aspect version: %w", err)
	}

	for _, question := range version.Questions {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO question_versions (id, aspect_version_id, position, text, weight, mandatory)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.UUID(question.ID), uuid.UUID(version.ID), question.Position, question.Text, question.Weight, question.Mandatory)
		if err != nil {
			return fmt.Errorf("create question version: %w", err)
		}
		for _, option := range question.Options {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO question_options (id, question_version_id, label, score)
				VALUES ($1, $2, $3, $4)
			`, uuid.UUID(option.ID), uuid.UUID(question.ID), option.Label, option.Score)
			if err != nil {
				return fmt.Errorf("create question option: %w", err)
			}
		}
		if err := s.insertRules(ctx, exec, question.Rules); err != nil {
			return err
		}
	}

	return s.insertRules(ctx, exec, version.Rules)
}

func (s *Postgres) insertRules(ctx context.Context, exec dbExecutor, rules []visibility.Rule) error {
	for _, rule := range rules {
		ruleID := rule.ID
		if ruleID == uuid.Nil {
			ruleID = uuid.New()
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO visibility_rules (id, owner_kind, owner_id, source_type, source_field, operator, value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ruleID, string(rule.Owner.Kind), rule.Owner.ID, string(rule.Source), rule.SourceField, string(rule.Operator), rule.Value)
		if err != nil {
			return fmt.Errorf("create visibility rule: %w", err)
		}
	}
	return nil
}

func (s *Postgres) GetAspect(ctx context.Context, aspectID id.AspectID) (*models.Aspect, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, code, name, created_at FROM aspects WHERE id = $1
	`, uuid.UUID(aspectID))

	var aspect models.Aspect
	var rawID uuid.UUID
	if err := row.Scan(&rawID, &aspect.Code, &aspect.Name, &aspect.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get aspect: %w", err)
	}
	aspect.ID = id.AspectID(rawID)
	return &aspect, nil
}

func (s *Postgres) GetAspectVersion(ctx context.Context, versionID id.AspectVersionID) (*models.AspectVersion, error) {
	return s.loadAspectVersion(ctx, `
		SELECT id, aspect_id, version, name, description, created_at
		FROM aspect_versions WHERE id = $1
	`, uuid.UUID(versionID))
}

func (s *Postgres) LatestAspectVersion(ctx context.Context, aspectID id.AspectID) (*models.AspectVersion, error) {
	return s.loadAspectVersion(ctx, `
		SELECT id, aspect_id, version, name, description, created_at
		FROM aspect_versions WHERE aspect_id = $1
		ORDER BY version DESC LIMIT 1
	`, uuid.UUID(aspectID))
}

func (s *Postgres) loadAspectVersion(ctx context.Context, query string, arg any) (*models.AspectVersion, error) {
	exec := s.execer(ctx)
	row := exec.QueryRowContext(ctx, query, arg)

	var version models.AspectVersion
	var rawID, rawAspectID uuid.UUID
	if err := row.Scan(&rawID, &rawAspectID, &version.Version, &version.Name, &version.Description, &version.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load aspect version: %w", err)
	}
	version.ID = id.AspectVersionID(rawID)
	version.AspectID = id.AspectID(rawAspectID)

	questions, err := s.loadQuestions(ctx, exec, version.ID)
	if err != nil {
		return nil, err
	}
	version.Questions = questions

	rules, err := s.loadRules(ctx, exec, visibility.OwnerRef{Kind: visibility.OwnerAspect, ID: rawID})
	if err != nil {
		return nil, err
	}
	version.Rules = rules

	return &version, nil
}

func (s *Postgres) loadQuestions(ctx context.Context, exec dbExecutor, versionID id.AspectVersionID) ([]models.QuestionVersion, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, position, text, weight, mandatory
		FROM question_versions WHERE aspect_version_id = $1
		ORDER BY position ASC
	`, uuid.UUID(versionID))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuestionVersion
	for rows.Next() {
		var question models.QuestionVersion
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &question.Position, &question.Text, &question.Weight, &question.Mandatory); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		question.ID = id.QuestionVersionID(rawID)
		question.AspectVID = versionID
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	for i := range questions {
		options, err := s.loadOptions(ctx, exec, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = options

		rules, err := s.loadRules(ctx, exec, visibility.OwnerRef{Kind: visibility.OwnerQuestion, ID: uuid.UUID(questions[i].ID)})
		if err != nil {
			return nil, err
		}
		questions[i].Rules = rules
	}
	return questions, nil
}

func (s *Postgres) loadOptions(ctx context.Context, exec dbExecutor, questionID id.QuestionVersionID) ([]models.QuestionOption, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, label, score FROM question_options
		WHERE question_version_id = $1 ORDER BY label ASC
	`, uuid.UUID(questionID))
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()

	var options []models.QuestionOption
	for rows.Next() {
		var option models.QuestionOption
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &option.Label, &option.Score); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		option.ID = id.QuestionOptionID(rawID)
		option.QuestionV = questionID
		options = append(options, option)
	}
	return options, rows.Err()
}

func (s *Postgres) loadRules(ctx context.Context, exec dbExecutor, owner visibility.OwnerRef) ([]visibility.Rule, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, source_type, source_field, operator, value
		FROM visibility_rules WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY id ASC
	`, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("load visibility rules: %w", err)
	}
	defer rows.Close()

	var rules []visibility.Rule
	for rows.Next() {
		rule := visibility.Rule{Owner: owner}
		var source, operator string
		if err := rows.Scan(&rule.ID, &source, &rule.SourceField, &operator, &rule.Value); err != nil {
			return nil, fmt.Errorf("scan visibility rule: %w", err)
		}
		rule.Source = visibility.SourceType(source)
		rule.Operator = visibility.Operator(operator)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Postgres) CreateTemplate(ctx context.Context, template *models.Template) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO templates (id, code, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(template.ID), template.Code, template.Name, template.CreatedAt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *Postgres) CreateTemplateVersion(ctx context.Context, version *models.TemplateVersion) error {
	exec := s.execer(ctx)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO template_versions (id, template_id, version, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(version.ID), uuid.UUID(version.TemplateID), version.Version, version.CreatedAt)
	if err != nil {
		return fmt.Errorf("create template version: %w", err)
	}

	for _, weight := range version.Weights {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO template_aspect_weights (template_version_id, aspect_version_id, weight)
			VALUES ($1, $2, $3)
		`, uuid.UUID(version.ID), uuid.UUID(weight.AspectVID), weight.Weight)
		if err != nil {
			return fmt.Errorf("create template aspect weight: %w", err)
		}
	}

	return s.insertRules(ctx, exec, version.Rules)
}

func (s *Postgres) GetTemplate(ctx context.Context, templateID id.TemplateID) (*models.Template, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, code, name, created_at FROM templates WHERE id = $1
	`, uuid.UUID(templateID))

	var template models.Template
	var rawID uuid.UUID
	if err := row.Scan(&rawID, &template.Code, &template.Name, &template.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	template.ID = id.TemplateID(rawID)
	return &template, nil
}

func (s *Postgres) GetTemplateVersion(ctx context.Context, versionID id.TemplateVersionID) (*models.TemplateVersion, error) {
	return s.loadTemplateVersion(ctx, `
		SELECT id, template_id, version, created_at
		FROM template_versions WHERE id = $1
	`, uuid.UUID(versionID))
}

func (s *Postgres) LatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, error) {
	return s.loadTemplateVersion(ctx, `
		SELECT id, template_id, version, created_at
		FROM template_versions WHERE template_id = $1
		ORDER BY version DESC LIMIT 1
	`, uuid.UUID(templateID))
}

func (s *Postgres) loadTemplateVersion(ctx context.Context, query string, arg any) (*models.TemplateVersion, error) {
	exec := s.execer(ctx)
	row := exec.QueryRowContext(ctx, query, arg)

	var version models.TemplateVersion
	var rawID, rawTemplateID uuid.UUID
	if err := row.Scan(&rawID, &rawTemplateID, &version.Version, &version.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load template version: %w", err)
	}
	version.ID = id.TemplateVersionID(rawID)
	version.TemplateID = id.TemplateID(rawTemplateID)

	rows, err := exec.QueryContext(ctx, `
		SELECT aspect_version_id, weight FROM template_aspect_weights
		WHERE template_version_id = $1
	`, rawID)
	if err != nil {
		return nil, fmt.Errorf("load template weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weight models.AspectWeight
		var rawAspectVID uuid.UUID
		if err := rows.Scan(&rawAspectVID, &weight.Weight); err != nil {
			return nil, fmt.Errorf("scan template weight: %w", err)
		}
		weight.AspectVID = id.AspectVersionID(rawAspectVID)
		version.Weights = append(version.Weights, weight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template weights: %w", err)
	}

	rules, err := s.loadRules(ctx, exec, visibility.OwnerRef{Kind: visibility.OwnerTemplate, ID: rawID})
	if err != nil {
		return nil, err
	}
	version.Rules = rules

	return &version, nil
}

func (s *Postgres) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, code, name, created_at FROM templates ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		var template models.Template
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &template.Code, &template.Name, &template.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		template.ID = id.TemplateID(rawID)
		templates = append(templates, &template)
	}
	return templates, rows.Err()
}
