package authz

import (
	"context"

	"jobboard/internal/models"
)

// UserLookup loads users by id.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// CompanyLookup finds the company owned by a user. It returns nil, nil when
// the user owns none.
type CompanyLookup interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Company, error)
}

// JobSeekerLookup finds the profile of a user. It returns nil, nil when the
// user has none.
type JobSeekerLookup interface {
	GetByUserID(ctx context.Context, userID uint) (*models.JobSeeker, error)
}

// Resolver turns a principal into a Scope.
type Resolver struct {
	users      UserLookup
	companies  CompanyLookup
	jobSeekers JobSeekerLookup
}

// NewResolver returns a Resolver backed by the given lookups.
func NewResolver(users UserLookup, companies CompanyLookup, jobSeekers JobSeekerLookup) *Resolver {
	return &Resolver{users: users, companies: companies, jobSeekers: jobSeekers}
}

// Resolve loads the caller's user row and owned profile. The stored role wins
// over the token claim. A user that no longer exists resolves to Anonymous;
// an inactive user is Forbidden.
func (r *Resolver) Resolve(ctx context.Context, p Principal) (Scope, error) {
	if p.IsAnonymous() {
		return Anonymous(), nil
	}

	user, err := r.users.GetByID(ctx, p.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return Anonymous(), nil
		}
		return Scope{}, err
	}
	if !user.IsActive() {
		return Scope{}, models.NewForbiddenError("Account is inactive")
	}

	switch user.Role {
	case models.RoleAdmin:
		return AdminScope(user.ID), nil

	case models.RoleEmployer:
		company, err := r.companies.GetByUserID(ctx, user.ID)
		if err != nil {
			return Scope{}, err
		}
		if company == nil {
			return EmployerScope(user.ID, nil), nil
		}
		return EmployerScope(user.ID, &company.ID), nil

	case models.RoleJobSeeker:
		profile, err := r.jobSeekers.GetByUserID(ctx, user.ID)
		if err != nil {
			return Scope{}, err
		}
		if profile == nil {
			return JobSeekerScope(user.ID, nil), nil
		}
		return JobSeekerScope(user.ID, &profile.ID), nil
	}

	return Scope{}, models.NewForbiddenError("Unknown account role")
}
