// Package service orchestrates report scoring: it joins stored answers to
// the pinned catalog snapshot, runs the pure scoring functions, and persists
// results plus their side effects in one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vigil/internal/audit"
	"vigil/internal/borrower"
	catalogmodels "vigil/internal/catalog/models"
	"vigil/internal/report/models"
	"vigil/internal/report/store"
	"vigil/internal/scoring"
	"vigil/internal/scoring/metrics"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/requestcontext"
)

// Catalog is the slice of the catalog service the scorer needs: resolving
// the applicable template for a borrower and loading pinned versions.
type Catalog interface {
	ResolveTemplate(ctx context.Context, evalCtx visibility.Context) (id.TemplateID, bool, error)
	LatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*catalogmodels.TemplateVersion, error)
	GetTemplateVersion(ctx context.Context, versionID id.TemplateVersionID) (*catalogmodels.TemplateVersion, error)
	GetAspectVersion(ctx context.Context, versionID id.AspectVersionID) (*catalogmodels.AspectVersion, error)
}

// Watchlists is the watchlist lifecycle slice driven by classification
// outcomes.
type Watchlists interface {
	EnsureActive(ctx context.Context, borrowerID id.BorrowerID, sourceReport id.ReportID) (bool, error)
	ArchiveForBorrower(ctx context.Context, borrowerID id.BorrowerID, resolvedBy id.UserID) (int, error)
}

// TxRunner wraps a function in a database transaction carried through ctx.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Watchlist transition labels reported to metrics.
const (
	transitionCreated   = "created"
	transitionArchived  = "archived"
	transitionUnchanged = "unchanged"
)

var statusTransitions = map[models.Status][]models.Status{
	models.StatusDraft:     {models.StatusSubmitted},
	models.StatusSubmitted: {models.StatusRejected, models.StatusFinal},
	models.StatusRejected:  {models.StatusSubmitted},
}

type Service struct {
	store      store.Store
	catalog    Catalog
	borrowers  borrower.Store
	watchlists Watchlists
	auditor    audit.Recorder
	runner     TxRunner
	metrics    *metrics.Metrics
	logger     *slog.Logger

	// Serializes recalculations per report. The map only ever grows, which
	// is acceptable: entries are one mutex per report seen by this process.
	mu    sync.Mutex
	locks map[id.ReportID]*sync.Mutex
}

func New(
	store store.Store,
	catalog Catalog,
	borrowers borrower.Store,
	watchlists Watchlists,
	auditor audit.Recorder,
	runner TxRunner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		catalog:    catalog,
		borrowers:  borrowers,
		watchlists: watchlists,
		auditor:    auditor,
		runner:     runner,
		metrics:    m,
		logger:     logger,
		locks:      make(map[id.ReportID]*sync.Mutex),
	}
}

func (s *Service) lockReport(reportID id.ReportID) func() {
	s.mu.Lock()
	lock, ok := s.locks[reportID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[reportID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// CreateReportInput opens a monitoring report. TemplateID is optional; when
// absent the applicable template is resolved from the borrower's profile.
type CreateReportInput struct {
	BorrowerID id.BorrowerID
	Period     string
	TemplateID *id.TemplateID
}

func (s *Service) CreateReport(ctx context.Context, input CreateReportInput) (*models.Report, error) {
	if input.Period == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}

	detail, facilities, err := s.loadBorrower(ctx, input.BorrowerID)
	if err != nil {
		return nil, err
	}

	templateID := input.TemplateID
	if templateID == nil {
		evalCtx := borrower.VisibilityContext(detail, facilities, nil)
		resolved, ok, err := s.catalog.ResolveTemplate(ctx, evalCtx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidState, "no template applies to this borrower")
		}
		templateID = &resolved
	}

	templateVersion, err := s.catalog.LatestTemplateVersion(ctx, *templateID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	report := &models.Report{
		ID:         id.ReportID(uuid.New()),
		BorrowerID: input.BorrowerID,
		Period:     input.Period,
		TemplateV:  templateVersion.ID,
		Status:     models.StatusDraft,
		CreatedBy:  requestcontext.ActorID(ctx),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create report", err)
	}
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load report", err)
	}
	return report, nil
}

// SaveAnswer records or replaces the answer to one question. Answers are
// only editable before the report enters the approval chain.
func (s *Service) SaveAnswer(ctx context.Context, reportID id.ReportID, questionVID id.QuestionVersionID, optionID id.QuestionOptionID) (*models.Answer, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.StatusDraft && report.Status != models.StatusRejected {
		return nil, dErrors.New(dErrors.CodeInvalidState, "answers are only editable on draft or rejected reports")
	}

	answer := &models.Answer{
		ID:         id.AnswerID(uuid.New()),
		ReportID:   reportID,
		QuestionV:  questionVID,
		OptionID:   optionID,
		AnsweredBy: requestcontext.ActorID(ctx),
		AnsweredAt: requestcontext.Now(ctx),
	}
	if err := s.store.UpsertAnswer(ctx, answer); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to save answer", err)
	}
	return answer, nil
}

// SetStatus moves a report along its lifecycle. Finalized reports never
// leave FINAL.
func (s *Service) SetStatus(ctx context.Context, reportID id.ReportID, status models.Status) error {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	allowed := false
	for _, next := range statusTransitions[report.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return dErrors.New(dErrors.CodeInvalidState, "illegal report status transition")
	}
	if err := s.store.UpdateReportStatus(ctx, reportID, status, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update report status", err)
	}
	return nil
}

// CalculateAndStoreSummary recomputes every aspect score and the overall
// classification for a report and persists them, replacing previous results
// in place. The recalculation, its audit entry and any watchlist transition
// commit in one transaction; concurrent calls for the same report are
// serialized.
func (s *Service) CalculateAndStoreSummary(ctx context.Context, reportID id.ReportID) (*models.Summary, error) {
	defer s.lockReport(reportID)()
	started := time.Now()

	var summary *models.Summary
	var transition string
	err := s.runner.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		summary, transition, err = s.recalculate(ctx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(summary.FinalClassification()))
	s.metrics.IncrementWatchlistTransition(transition)
	s.metrics.ObserveRecalculateLatency(time.Since(started))

	s.logger.InfoContext(ctx, "report recalculated",
		"report_id", reportID,
		"total_score", summary.TotalScore,
		"classification", summary.FinalClassification(),
		"watchlist_transition", transition,
	)
	return summary, nil
}

func (s *Service) recalculate(ctx context.Context, reportID id.ReportID) (*models.Summary, string, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, "", err
	}
	if report.Status == models.StatusFinal {
		return nil, "", dErrors.New(dErrors.CodeInvalidState, "final reports cannot be recalculated")
	}

	detail, facilities, err := s.loadBorrower(ctx, report.BorrowerID)
	if err != nil {
		return nil, "", err
	}

	templateVersion, err := s.catalog.GetTemplateVersion(ctx, report.TemplateV)
	if err != nil {
		return nil, "", err
	}
	aspectVersions := make([]*catalogmodels.AspectVersion, 0, len(templateVersion.Weights))
	for _, weight := range templateVersion.Weights {
		aspectVersion, err := s.catalog.GetAspectVersion(ctx, weight.AspectVID)
		if err != nil {
			return nil, "", err
		}
		aspectVersions = append(aspectVersions, aspectVersion)
	}

	rows, err := s.store.ListAnswers(ctx, reportID)
	if err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeInternal, "failed to load answers", err)
	}

	answered := s.joinAnswers(detail, facilities, aspectVersions, rows)

	aspects := scoring.AspectScores(answered)
	overall := scoring.Overall(aspects, templateVersion.WeightFor, answered, detail.Collectibility)

	now := requestcontext.Now(ctx)
	for _, aspect := range aspects {
		result := &models.AspectResult{
			ReportID:       reportID,
			AspectV:        aspect.AspectVID,
			Score:          aspect.Score,
			Classification: aspect.Class,
			ComputedAt:     now,
		}
		if err := s.store.UpsertAspectResult(ctx, result); err != nil {
			return nil, "", dErrors.Wrap(dErrors.CodeInternal, "failed to store aspect result", err)
		}
	}

	summary := &models.Summary{
		ReportID:       reportID,
		TotalScore:     overall.TotalScore,
		Classification: overall.Classification,
		Collectibility: overall.Collectibility,
		ComputedAt:     now,
	}
	// A recalculation refreshes computed fields only; a standing human
	// override survives it.
	if prior, err := s.store.GetSummary(ctx, reportID); err == nil {
		summary.Override = prior.Override
		summary.OverrideReason = prior.OverrideReason
		summary.OverriddenBy = prior.OverriddenBy
		summary.Notes = prior.Notes
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, "", dErrors.Wrap(dErrors.CodeInternal, "failed to load prior summary", err)
	}
	if err := s.store.UpsertSummary(ctx, summary); err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeInternal, "failed to store summary", err)
	}

	if err := s.auditor.Record(ctx, audit.Event{
		SubjectType: "report",
		SubjectID:   reportID.String(),
		Action:      audit.ActionReportRecalculated,
		ActorID:     requestcontext.ActorID(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		Metadata: map[string]any{
			"total_score":    summary.TotalScore,
			"classification": string(summary.FinalClassification()),
		},
	}); err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeInternal, "failed to audit recalculation", err)
	}

	transition, err := s.dispatchWatchlist(ctx, report, summary.FinalClassification())
	if err != nil {
		return nil, "", err
	}
	return summary, transition, nil
}

// joinAnswers resolves answer rows against the pinned catalog snapshot and
// applies visibility: hidden aspects and questions are excluded entirely, a
// visible unanswered or unresolvable question stays in with a nil score so
// mandatory-failure counting sees it.
func (s *Service) joinAnswers(
	detail *borrower.Detail,
	facilities []borrower.Facility,
	aspectVersions []*catalogmodels.AspectVersion,
	rows []*models.Answer,
) []scoring.AnsweredQuestion {
	byQuestion := make(map[id.QuestionVersionID]*models.Answer, len(rows))
	for _, row := range rows {
		byQuestion[row.QuestionV] = row
	}

	answerValues := make(map[id.QuestionVersionID]any)
	optionScores := make(map[id.QuestionVersionID]*float64)
	for _, aspectVersion := range aspectVersions {
		for i := range aspectVersion.Questions {
			question := &aspectVersion.Questions[i]
			row, ok := byQuestion[question.ID]
			if !ok {
				continue
			}
			option := question.Option(row.OptionID)
			if option == nil {
				continue
			}
			answerValues[question.ID] = option.Label
			score := option.Score
			optionScores[question.ID] = &score
		}
	}
	evalCtx := borrower.VisibilityContext(detail, facilities, answerValues)

	var answered []scoring.AnsweredQuestion
	for _, aspectVersion := range aspectVersions {
		if !visibility.Visible(aspectVersion.Rules, evalCtx) {
			continue
		}
		for _, question := range aspectVersion.Questions {
			if !visibility.Visible(question.Rules, evalCtx) {
				continue
			}
			answered = append(answered, scoring.AnsweredQuestion{
				QuestionVID: question.ID,
				AspectVID:   aspectVersion.ID,
				Weight:      question.Weight,
				Mandatory:   question.Mandatory,
				OptionScore: optionScores[question.ID],
			})
		}
	}
	return answered
}

func (s *Service) dispatchWatchlist(ctx context.Context, report *models.Report, classification id.Classification) (string, error) {
	switch classification {
	case id.ClassificationWatchlist:
		created, err := s.watchlists.EnsureActive(ctx, report.BorrowerID, report.ID)
		if err != nil {
			return "", err
		}
		if created {
			return transitionCreated, nil
		}
	case id.ClassificationSafe:
		archived, err := s.watchlists.ArchiveForBorrower(ctx, report.BorrowerID, requestcontext.ActorID(ctx))
		if err != nil {
			return "", err
		}
		if archived > 0 {
			return transitionArchived, nil
		}
	}
	return transitionUnchanged, nil
}

// OverrideSummary replaces the effective classification with a human
// judgment. The computed fields stay untouched; the override and its
// mandatory reason ride alongside them, and watchlist state follows the
// overridden outcome.
func (s *Service) OverrideSummary(ctx context.Context, reportID id.ReportID, override id.Classification, reason string) (*models.Summary, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "override reason is required")
	}
	defer s.lockReport(reportID)()

	var summary *models.Summary
	var transition string
	err := s.runner.WithinTx(ctx, func(ctx context.Context) error {
		report, err := s.GetReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report.Status == models.StatusFinal {
			return dErrors.New(dErrors.CodeInvalidState, "final reports cannot be overridden")
		}

		summary, err = s.store.GetSummary(ctx, reportID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidState, "report has no computed summary to override")
		}
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to load summary", err)
		}

		actor := requestcontext.ActorID(ctx)
		summary.Override = &override
		summary.OverrideReason = reason
		summary.OverriddenBy = &actor
		if err := s.store.UpsertSummary(ctx, summary); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to store override", err)
		}

		if err := s.auditor.Record(ctx, audit.Event{
			SubjectType: "report",
			SubjectID:   reportID.String(),
			Action:      audit.ActionSummaryOverridden,
			ActorID:     actor,
			RequestID:   requestcontext.RequestID(ctx),
			Metadata: map[string]any{
				"computed_classification": string(summary.Classification),
				"override":                string(override),
				"reason":                  reason,
			},
		}); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to audit override", err)
		}

		transition, err = s.dispatchWatchlist(ctx, report, override)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementWatchlistTransition(transition)
	return summary, nil
}

// GetResults returns the stored per-aspect results and summary. NotFound
// before the first recalculation.
func (s *Service) GetResults(ctx context.Context, reportID id.ReportID) ([]*models.AspectResult, *models.Summary, error) {
	summary, err := s.store.GetSummary(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "report has not been calculated yet")
		}
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load summary", err)
	}
	aspects, err := s.store.ListAspectResults(ctx, reportID)
	if err != nil {
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load aspect results", err)
	}
	return aspects, summary, nil
}

func (s *Service) loadBorrower(ctx context.Context, borrowerID id.BorrowerID) (*borrower.Detail, []borrower.Facility, error) {
	detail, err := s.borrowers.GetDetail(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "borrower not found")
		}
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load borrower", err)
	}
	facilities, err := s.borrowers.ListFacilities(ctx, borrowerID)
	if err != nil {
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load facilities", err)
	}
	return detail, facilities, nil
}
