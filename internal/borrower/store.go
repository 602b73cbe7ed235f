package borrower

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	txcontext "vigil/pkg/platform/tx"
)

// Store reads borrower detail and facility records.
type Store interface {
	GetDetail(ctx context.Context, borrowerID id.BorrowerID) (*Detail, error)
	ListFacilities(ctx context.Context, borrowerID id.BorrowerID) ([]Facility, error)
}

// InMemory backs unit tests.
type InMemory struct {
	mu         sync.RWMutex
	details    map[id.BorrowerID]*Detail
	facilities map[id.BorrowerID][]Facility
}

func NewInMemory() *InMemory {
	return &InMemory{
		details:    make(map[id.BorrowerID]*Detail),
		facilities: make(map[id.BorrowerID][]Facility),
	}
}

// Put seeds a borrower with its facilities.
func (s *InMemory) Put(detail *Detail, facilities []Facility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := *detail
	s.details[detail.ID] = &cloned
	s.facilities[detail.ID] = append([]Facility(nil), facilities...)
}

func (s *InMemory) GetDetail(_ context.Context, borrowerID id.BorrowerID) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	detail, ok := s.details[borrowerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *detail
	return &cloned, nil
}

func (s *InMemory) ListFacilities(_ context.Context, borrowerID id.BorrowerID) ([]Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Facility(nil), s.facilities[borrowerID]...), nil
}

// Postgres reads borrower rows maintained by the upstream CRUD application.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) GetDetail(ctx context.Context, borrowerID id.BorrowerID) (*Detail, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, name, borrower_group, purpose, economic_sector, business_field,
		       borrower_business, collectibility, restructuring
		FROM borrowers WHERE id = $1
	`, uuid.UUID(borrowerID))

	var detail Detail
	var rawID uuid.UUID
	var collectibility int
	err := row.Scan(&rawID, &detail.Name, &detail.Group, &detail.Purpose, &detail.EconomicSector,
		&detail.BusinessField, &detail.Business, &collectibility, &detail.Restructuring)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get borrower detail: %w", err)
	}
	detail.ID = id.BorrowerID(rawID)
	detail.Collectibility = id.Collectibility(collectibility)
	return &detail, nil
}

func (s *Postgres) ListFacilities(ctx context.Context, borrowerID id.BorrowerID) ([]Facility, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT facility_name, credit_limit, outstanding, interest_rate,
		       principal_arrears, interest_arrears, pdo_days, maturity_date
		FROM borrower_facilities WHERE borrower_id = $1
		ORDER BY facility_name ASC
	`, uuid.UUID(borrowerID))
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []Facility
	for rows.Next() {
		facility := Facility{BorrowerID: borrowerID}
		err := rows.Scan(&facility.FacilityName, &facility.Limit, &facility.Outstanding,
			&facility.InterestRate, &facility.PrincipalArrears, &facility.InterestArrears,
			&facility.PDODays, &facility.MaturityDate)
		if err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		facilities = append(facilities, facility)
	}
	return facilities, rows.Err()
}
