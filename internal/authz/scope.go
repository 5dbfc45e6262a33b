// Package authz resolves the authorization scope of a request once and
// exposes it as an immutable value that services receive explicitly.
package authz

import (
	"jobboard/internal/models"
)

// Kind is the coarse role a scope grants.
type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindAdmin     Kind = "admin"
	KindEmployer  Kind = "employer"
	KindJobSeeker Kind = "jobseeker"
)

// Principal is the authenticated identity taken from a verified token.
// The zero value is an anonymous caller.
type Principal struct {
	UserID uint
	Role   models.Role
}

// IsAnonymous reports whether no user is attached.
func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

// Scope is the resolved authorization context of a request. Fields are
// unexported so a scope cannot be widened after resolution.
type Scope struct {
	kind        Kind
	userID      uint
	companyID   *uint
	jobSeekerID *uint
}

// Anonymous returns the scope of an unauthenticated caller.
func Anonymous() Scope {
	return Scope{kind: KindAnonymous}
}

// AdminScope returns an admin scope.
func AdminScope(userID uint) Scope {
	return Scope{kind: KindAdmin, userID: userID}
}

// EmployerScope returns an employer scope. A nil companyID marks an
// employer who has not created a company yet.
func EmployerScope(userID uint, companyID *uint) Scope {
	return Scope{kind: KindEmployer, userID: userID, companyID: copyID(companyID)}
}

// JobSeekerScope returns a job seeker scope. A nil jobSeekerID marks a
// seeker without a profile row.
func JobSeekerScope(userID uint, jobSeekerID *uint) Scope {
	return Scope{kind: KindJobSeeker, userID: userID, jobSeekerID: copyID(jobSeekerID)}
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func (s Scope) Kind() Kind {
	if s.kind == "" {
		return KindAnonymous
	}
	return s.kind
}

func (s Scope) UserID() uint { return s.userID }

func (s Scope) IsAdmin() bool     { return s.kind == KindAdmin }
func (s Scope) IsEmployer() bool  { return s.kind == KindEmployer }
func (s Scope) IsJobSeeker() bool { return s.kind == KindJobSeeker }
func (s Scope) IsAnonymous() bool { return s.Kind() == KindAnonymous }

// CompanyID returns the employer's company, if any.
func (s Scope) CompanyID() (uint, bool) {
	if s.companyID == nil {
		return 0, false
	}
	return *s.companyID, true
}

// JobSeekerID returns the seeker's profile id, if any.
func (s Scope) JobSeekerID() (uint, bool) {
	if s.jobSeekerID == nil {
		return 0, false
	}
	return *s.jobSeekerID, true
}

// JobSeekerIDPtr returns a copy of the profile id or nil.
func (s Scope) JobSeekerIDPtr() *uint {
	return copyID(s.jobSeekerID)
}

func (s Scope) HasCompany() bool          { return s.companyID != nil }
func (s Scope) HasJobSeekerProfile() bool { return s.jobSeekerID != nil }

// OwnsCompany reports whether the scope is the employer owning companyID.
func (s Scope) OwnsCompany(companyID uint) bool {
	return s.kind == KindEmployer && s.companyID != nil && *s.companyID == companyID
}

// CanManageCompany reports whether the scope may mutate rows of companyID.
func (s Scope) CanManageCompany(companyID uint) bool {
	return s.IsAdmin() || s.OwnsCompany(companyID)
}

// RequireEmployerCompany returns the employer's company id. Non-employers get
// Forbidden; employers without a company get ProfileIncomplete.
func (s Scope) RequireEmployerCompany() (uint, error) {
	if !s.IsEmployer() {
		return 0, models.NewForbiddenError("Employer account required")
	}
	id, ok := s.CompanyID()
	if !ok {
		return 0, models.NewProfileIncompleteError("Create your company profile first")
	}
	return id, nil
}

// AuthorizeCompany checks that the scope may act on rows owned by companyID.
// Employers without a company get ProfileIncomplete, everyone else Forbidden.
func (s Scope) AuthorizeCompany(companyID uint) error {
	if s.IsAdmin() {
		return nil
	}
	if s.IsEmployer() {
		own, err := s.RequireEmployerCompany()
		if err != nil {
			return err
		}
		if own == companyID {
			return nil
		}
	}
	return models.NewForbiddenError("You do not have access to this resource")
}
