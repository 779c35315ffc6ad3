// Package query derives filtered views and filter options from cached jobs.
// Nothing here mutates its input or touches the store.
package query

import (
	"strings"

	"jobmate/board-client/internal/model"
)

// FilterByTitle keeps the jobs whose title contains q, ignoring case.
// An empty q keeps everything. Input order is preserved.
func FilterByTitle(jobs []model.Job, q string) []model.Job {
	needle := strings.ToLower(q)
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if needle == "" || strings.Contains(strings.ToLower(j.Title), needle) {
			out = append(out, j)
		}
	}
	return out
}

// FilterAdminTable keeps the rows whose title or company name contains q,
// ignoring case.
func FilterAdminTable(rows []model.Job, q string) []model.Job {
	needle := strings.ToLower(q)
	out := make([]model.Job, 0, len(rows))
	for _, j := range rows {
		if needle == "" ||
			strings.Contains(strings.ToLower(j.Title), needle) ||
			strings.Contains(strings.ToLower(j.CompanyName()), needle) {
			out = append(out, j)
		}
	}
	return out
}

// Latest returns at most n jobs from the front of jobs.
func Latest(jobs []model.Job, n int) []model.Job {
	if n <= 0 {
		return []model.Job{}
	}
	if n > len(jobs) {
		n = len(jobs)
	}
	out := make([]model.Job, n)
	copy(out, jobs[:n])
	return out
}
