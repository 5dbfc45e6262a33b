package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"jobboard/internal/models"
)

// JobSort selects the ordering of the public job listing.
type JobSort string

const (
	SortDefault  JobSort = ""
	SortNewest   JobSort = "newest"
	SortSalary   JobSort = "salary"
	SortDeadline JobSort = "deadline"
)

// JobFilter narrows the public job listing.
type JobFilter struct {
	Keyword    string
	Location   string
	CategoryID *uint
	JobType    models.JobType
	Sort       JobSort
	Page       int
}

// ManagedJobFilter narrows an employer's or admin's job management listing.
type ManagedJobFilter struct {
	Status models.JobStatus
	Query  string
	Page   int
}

// CompanyFilter narrows the company directory.
type CompanyFilter struct {
	Search   string
	Location string
	Industry string
	Page     int
}

// ApplicationFilter narrows an application listing.
type ApplicationFilter struct {
	Status models.ApplicationStatus
	JobID  *uint
	Query  string
	Page   int
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role  models.Role
	Query string
	Page  int
}

// Getter reads one raw query-string value; url.Values.Get and a wrapped
// fiber Ctx.Query both fit.
type Getter func(key string) string

// ParseJobFilter reads keyword, location, category, job_type, sort and page.
// Values that do not parse are dropped, never rejected.
func ParseJobFilter(get Getter) JobFilter {
	f := JobFilter{
		Keyword:    strings.TrimSpace(get("keyword")),
		Location:   strings.TrimSpace(get("location")),
		CategoryID: parseID(get("category")),
		Page:       ParsePage(get("page")),
	}
	if jt, ok := models.ParseJobType(get("job_type")); ok {
		f.JobType = jt
	}
	switch s := JobSort(strings.ToLower(strings.TrimSpace(get("sort")))); s {
	case SortNewest, SortSalary, SortDeadline:
		f.Sort = s
	}
	return f
}

// ParseManagedJobFilter reads status, q and page.
func ParseManagedJobFilter(get Getter) ManagedJobFilter {
	f := ManagedJobFilter{
		Query: strings.TrimSpace(get("q")),
		Page:  ParsePage(get("page")),
	}
	if st, ok := models.ParseJobStatus(get("status")); ok {
		f.Status = st
	}
	return f
}

// ParseCompanyFilter reads search, location, industry and page.
func ParseCompanyFilter(get Getter) CompanyFilter {
	return CompanyFilter{
		Search:   strings.TrimSpace(get("search")),
		Location: strings.TrimSpace(get("location")),
		Industry: strings.TrimSpace(get("industry")),
		Page:     ParsePage(get("page")),
	}
}

// ParseApplicationFilter reads status, job_id, q and page.
func ParseApplicationFilter(get Getter) ApplicationFilter {
	f := ApplicationFilter{
		JobID: parseID(get("job_id")),
		Query: strings.TrimSpace(get("q")),
		Page:  ParsePage(get("page")),
	}
	if st, ok := models.ParseApplicationStatus(get("status")); ok {
		f.Status = st
	}
	return f
}

// ParseUserFilter reads role, q and page.
func ParseUserFilter(get Getter) UserFilter {
	f := UserFilter{
		Query: strings.TrimSpace(get("q")),
		Page:  ParsePage(get("page")),
	}
	if r, ok := models.ParseRole(get("role")); ok {
		f.Role = r
	}
	return f
}

// ParsePage parses a 1-based page number. Garbage is page 1 and numbers too
// large for int clamp to MaxPage.
func ParsePage(raw string) int {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && p > 0 {
			return MaxPage
		}
		return 1
	}
	return NormalizePage(p)
}

// MaxPage bounds page numbers so the row offset stays within int32.
const MaxPage = math.MaxInt32 / PageSize

// NormalizePage clamps p to [1, MaxPage].
func NormalizePage(p int) int {
	switch {
	case p < 1:
		return 1
	case p > MaxPage:
		return MaxPage
	}
	return p
}

func parseID(raw string) *uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}
