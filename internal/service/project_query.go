package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"golang.org/x/text/cases"

	"github.com/spec-kit/project-dashboard/internal/domain"
	apperrors "github.com/spec-kit/project-dashboard/pkg/util/errorutil"
)

// ProjectSort selects the order of a query result.
type ProjectSort string

const (
	// SortStored keeps insertion order.
	SortStored      ProjectSort = ""
	SortUpdatedDesc ProjectSort = "updated_desc"
	SortCreatedDesc ProjectSort = "created_desc"
	SortNameAsc     ProjectSort = "name_asc"
)

// Valid reports whether s is a known sort key.
func (s ProjectSort) Valid() bool {
	switch s {
	case SortStored, SortUpdatedDesc, SortCreatedDesc, SortNameAsc:
		return true
	}
	return false
}

// Page sizes used by the dashboard grid.
const (
	DefaultPageSize = 9
	LoadMoreStep    = 3
)

// ProjectFilter narrows, orders and pages a project list.
type ProjectFilter struct {
	Search   string
	Statuses []domain.ProjectStatus
	// Where is an optional boolean expression over name, description,
	// status, createdAt, updatedAt and now.
	Where  string
	Sort   ProjectSort
	Limit  int
	Offset int
}

// LoadMore widens the page by LoadMoreStep.
func (f ProjectFilter) LoadMore() ProjectFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	f.Limit += LoadMoreStep
	return f
}

// ProjectPage is one page of a query result.
type ProjectPage struct {
	Items   []domain.Project `json:"items"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"hasMore"`
}

// ProjectStats counts projects per status.
type ProjectStats struct {
	Total    int                          `json:"total"`
	ByStatus map[domain.ProjectStatus]int `json:"byStatus"`
}

// ApplyProjectFilter evaluates filter over projects without mutating them.
func ApplyProjectFilter(projects []domain.Project, filter ProjectFilter, now time.Time) (ProjectPage, error) {
	if !filter.Sort.Valid() {
		return ProjectPage{}, apperrors.NewValidationError("invalid sort", map[string]any{"sort": filter.Sort})
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return ProjectPage{}, apperrors.NewValidationError("invalid project status", map[string]any{"status": status})
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return ProjectPage{}, apperrors.NewValidationError("limit and offset must not be negative", nil)
	}

	program, err := compileWhere(filter.Where)
	if err != nil {
		return ProjectPage{}, err
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter.Search))

	matched := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, p.Status) {
			continue
		}
		if needle != "" && !matchesSearch(fold, p, needle) {
			continue
		}
		if program != nil {
			ok, err := runWhere(program, p, now)
			if err != nil {
				return ProjectPage{}, err
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, p.Clone())
	}

	sortProjects(matched, filter.Sort)

	limit := filter.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	page := ProjectPage{Total: len(matched), Limit: limit, Offset: filter.Offset}
	start := min(filter.Offset, len(matched))
	end := min(start+limit, len(matched))
	page.Items = matched[start:end]
	page.HasMore = end < len(matched)
	return page, nil
}

// ComputeStats counts every status, including those with no projects.
func ComputeStats(projects []domain.Project) ProjectStats {
	stats := ProjectStats{Total: len(projects), ByStatus: make(map[domain.ProjectStatus]int, len(domain.ProjectStatuses))}
	for _, status := range domain.ProjectStatuses {
		stats.ByStatus[status] = 0
	}
	for _, p := range projects {
		stats.ByStatus[p.Status]++
	}
	return stats
}

func matchesSearch(fold cases.Caser, p domain.Project, needle string) bool {
	if strings.Contains(fold.String(p.Name), needle) {
		return true
	}
	return p.Description != nil && strings.Contains(fold.String(*p.Description), needle)
}

func containsStatus(statuses []domain.ProjectStatus, status domain.ProjectStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sortProjects(projects []domain.Project, order ProjectSort) {
	switch order {
	case SortUpdatedDesc:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
		})
	case SortCreatedDesc:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		})
	case SortNameAsc:
		fold := cases.Fold()
		sort.SliceStable(projects, func(i, j int) bool {
			return fold.String(projects[i].Name) < fold.String(projects[j].Name)
		})
	}
}

func whereEnv(p domain.Project, now time.Time) map[string]any {
	desc := ""
	if p.Description != nil {
		desc = *p.Description
	}
	var start time.Time
	if p.StartDate != nil {
		start = *p.StartDate
	}
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": desc,
		"startDate":   start,
		"status":      string(p.Status),
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
		"now":         now,
	}
}

func compileWhere(where string) (*exprvm.Program, error) {
	where = strings.TrimSpace(where)
	if where == "" {
		return nil, nil
	}
	program, err := exprlang.Compile(where,
		exprlang.Env(whereEnv(domain.Project{}, time.Time{})),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid where expression", map[string]any{
			"where": where,
			"error": err.Error(),
		})
	}
	return program, nil
}

func runWhere(program *exprvm.Program, p domain.Project, now time.Time) (bool, error) {
	out, err := exprlang.Run(program, whereEnv(p, now))
	if err != nil {
		return false, apperrors.NewValidationError("where expression failed", map[string]any{
			"project_id": p.ID,
			"error":      err.Error(),
		})
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("where expression returned %T", out)
	}
	return matched, nil
}
