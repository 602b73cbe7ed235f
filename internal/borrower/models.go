// Package borrower holds the borrower detail and facility records the
// scoring core consumes as collaborator inputs. Generic borrower CRUD lives
// upstream; this module only reads what rule evaluation and scoring need.
package borrower

import (
	"time"

	"vigil/internal/visibility"
	id "vigil/pkg/domain"
)

// Detail is the borrower profile snapshot rules evaluate against.
type Detail struct {
	ID             id.BorrowerID
	Name           string
	Group          string
	Purpose        string
	EconomicSector string
	BusinessField  string
	Business       string
	Collectibility id.Collectibility
	Restructuring  bool
}

// Facility is one credit facility record for a borrower.
type Facility struct {
	BorrowerID       id.BorrowerID
	FacilityName     string
	Limit            float64
	Outstanding      float64
	InterestRate     float64
	PrincipalArrears float64
	InterestArrears  float64
	PDODays          int
	MaturityDate     time.Time
}

// VisibilityContext flattens borrower data into the field-name space rule
// authors use. Facility records always go in as a list so the aggregation
// prefixes apply.
func VisibilityContext(detail *Detail, facilities []Facility, answers map[id.QuestionVersionID]any) visibility.Context {
	evalCtx := visibility.Context{Answers: answers}
	if detail != nil {
		evalCtx.Borrower = map[string]any{
			"borrower_group":    detail.Group,
			"purpose":           detail.Purpose,
			"economic_sector":   detail.EconomicSector,
			"business_field":    detail.BusinessField,
			"borrower_business": detail.Business,
			"collectibility":    detail.Collectibility.Int(),
			"restructuring":     detail.Restructuring,
		}
	}
	for _, facility := range facilities {
		evalCtx.Facilities = append(evalCtx.Facilities, map[string]any{
			"facility_name":     facility.FacilityName,
			"limit":             facility.Limit,
			"outstanding":       facility.Outstanding,
			"interest_rate":     facility.InterestRate,
			"principal_arrears": facility.PrincipalArrears,
			"interest_arrears":  facility.InterestArrears,
			"pdo_days":          facility.PDODays,
			"maturity_date":     facility.MaturityDate.Format("2006-01-02"),
		})
	}
	return evalCtx
}
