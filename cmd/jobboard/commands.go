package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docopt/docopt-go"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
	"jobmate/board-client/internal/mutation"
	"jobmate/board-client/internal/query"
	"jobmate/board-client/internal/scheduler"
)

func (a *app) dispatch(ctx context.Context, opts docopt.Opts) error {
	if admin, _ := opts.Bool("admin"); admin {
		return a.dispatchAdmin(ctx, opts)
	}

	switch {
	case flag(opts, "jobs"):
		return a.listJobs(ctx, opts)
	case flag(opts, "facets"):
		return a.facets(ctx)
	case flag(opts, "job"):
		return a.showJob(ctx, str(opts, "<job_id>"))
	case flag(opts, "apply"):
		return a.apply(ctx, str(opts, "<job_id>"))
	case flag(opts, "save"):
		return a.save(ctx, str(opts, "<job_id>"))
	case flag(opts, "unsave"):
		if !a.saved.Remove(a.viewer(), str(opts, "<job_id>")) {
			fmt.Println("not saved")
		}
		return nil
	case flag(opts, "saved"):
		printJobs(a.saved.List(a.viewer()), time.Now())
		return nil
	case flag(opts, "watch"):
		return a.watch(ctx)
	}
	return nil
}

func (a *app) dispatchAdmin(ctx context.Context, opts docopt.Opts) error {
	if err := a.sync.Refresh(ctx); err != nil {
		return err
	}

	switch {
	case flag(opts, "jobs"):
		printAdminJobs(query.FilterAdminTable(a.store.Jobs.List(), str(opts, "--search")))
		return nil
	case flag(opts, "companies"):
		a.printCompanies()
		return nil
	case flag(opts, "users"):
		printUsers(a.store.Users.List())
		return nil
	case flag(opts, "create-job"):
		f, err := jobFieldsFrom(opts)
		if err != nil {
			return err
		}
		return report(a.coord.CreateJob(ctx, f))
	case flag(opts, "update-job"):
		f, err := jobFieldsFrom(opts)
		if err != nil {
			return err
		}
		return report(a.coord.UpdateJob(ctx, str(opts, "<job_id>"), f))
	case flag(opts, "delete-job"):
		return report(a.coord.DeleteJob(ctx, str(opts, "<job_id>")))
	case flag(opts, "create-company"):
		return report(a.coord.CreateCompany(ctx, model.CompanyFields{
			Name:        str(opts, "--name"),
			Website:     str(opts, "--website"),
			Location:    str(opts, "--location"),
			Description: str(opts, "--description"),
			UserID:      a.session.UserID(),
		}))
	case flag(opts, "accept"):
		return a.decide(ctx, str(opts, "<company_id>"), approval.StatusAccepted)
	case flag(opts, "reject"):
		return a.decide(ctx, str(opts, "<company_id>"), approval.StatusRejected)
	case flag(opts, "delete-company"):
		return report(a.coord.DeleteCompany(ctx, str(opts, "<company_id>")))
	case flag(opts, "create-user"):
		return report(a.coord.CreateUser(ctx, model.UserFields{
			Fullname:    str(opts, "--fullname"),
			Email:       str(opts, "--email"),
			PhoneNumber: str(opts, "--phone"),
			Password:    str(opts, "--password"),
			Role:        model.Role(str(opts, "--role")),
		}))
	case flag(opts, "delete-user"):
		return report(a.coord.DeleteUser(ctx, str(opts, "<user_id>")))
	}
	return nil
}

// ── Browsing ────────────────────────────────────────────────────────────────

func (a *app) listJobs(ctx context.Context, opts docopt.Opts) error {
	if err := a.sync.RefreshJobs(ctx); err != nil {
		return err
	}

	state := query.State{Search: str(opts, "--search")}
	if raw := str(opts, "--facet"); raw != "" {
		cat, value, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("--facet must look like Category:Value, got %q", raw)
		}
		c, err := query.ParseCategory(cat)
		if err != nil {
			return err
		}
		state.Facet = query.Selection{Category: c, Value: value}
	}

	jobs := state.Apply(a.store.Jobs.List())
	if n := str(opts, "--latest"); n != "" {
		limit, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("--latest must be a number: %w", err)
		}
		jobs = query.Latest(jobs, limit)
	}
	printJobs(jobs, time.Now())
	return nil
}

func (a *app) facets(ctx context.Context) error {
	if err := a.sync.RefreshJobs(ctx); err != nil {
		return err
	}
	f := query.BuildFacets(a.store.Jobs.List())
	for _, c := range query.Categories {
		fmt.Printf("%s:\n", c)
		for _, v := range f[c] {
			fmt.Printf("  %s\n", v)
		}
	}
	return nil
}

func (a *app) showJob(ctx context.Context, id string) error {
	if err := a.sync.FetchJob(ctx, id); err != nil {
		return err
	}
	j, ok := a.store.Jobs.Get(id)
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	viewer := a.viewer()
	fmt.Printf("%s at %s (%s)\n", j.Title, orDash(j.CompanyName()), j.Location)
	fmt.Printf("  %s, %s, %d position(s), salary %s\n", j.JobType, j.ExperienceLevel, j.Position, fmtSalary(j.Salary))
	fmt.Printf("  posted %s, %d applicant(s)\n", ago(j.CreatedAt, time.Now()), j.ApplicantCount())
	fmt.Printf("  requirements: %s\n", strings.Join(j.Requirements, ", "))
	fmt.Printf("  %s\n", j.Description)
	if j.HasApplicant(a.session.UserID()) {
		fmt.Println("  you have applied")
	}
	if a.saved.IsSaved(viewer, j.ID) {
		fmt.Println("  saved")
	}
	return nil
}

func (a *app) apply(ctx context.Context, id string) error {
	if err := a.sync.FetchJob(ctx, id); err != nil {
		return err
	}
	return report(a.coord.ApplyToJob(ctx, id))
}

func (a *app) save(ctx context.Context, id string) error {
	if err := a.sync.FetchJob(ctx, id); err != nil {
		return err
	}
	j, ok := a.store.Jobs.Get(id)
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if !a.saved.Add(a.viewer(), j) {
		fmt.Println("already saved")
		return nil
	}
	if a.cfg.SavedDB == "" {
		log.Println("[jobboard] SAVED_DB not set; saved jobs last for this run only")
	}
	fmt.Printf("saved %s\n", j.Title)
	return nil
}

// watch refreshes on the configured interval and prints jobs not seen yet.
func (a *app) watch(ctx context.Context) error {
	sched := scheduler.New(a.sync, a.cfg.RefreshInterval)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	viewer := a.viewer()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	var seen uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		v := a.store.Jobs.Version()
		if v == seen {
			continue
		}
		seen = v
		for _, j := range a.notify.Open(viewer, a.store.Jobs.List()) {
			fmt.Printf("New job posted: %s (%s)\n", j.Title, j.ID)
		}
	}
}

// viewer keys the saved set and notifications; anonymous users share one.
func (a *app) viewer() string {
	if id := a.session.UserID(); id != "" {
		return id
	}
	return "anonymous"
}

// ── Admin ───────────────────────────────────────────────────────────────────

func (a *app) decide(ctx context.Context, id string, to approval.Status) error {
	done := a.coord.Submit(ctx, func(ctx context.Context) (*mutation.Result, error) {
		return a.coord.SetCompanyStatus(ctx, id, to)
	})
	if shown, ok := a.coord.PendingStatus(id); ok {
		fmt.Printf("company %s: %s (pending confirmation)\n", id, shown)
	}
	out := <-done
	return report(out.Result, out.Err)
}

func (a *app) printCompanies() {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tSTATUS")
	for _, c := range a.store.Companies.List() {
		status, _ := a.coord.CompanyStatus(c.ID)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.Location), status)
	}
	_ = w.Flush()
}

// ── Output ──────────────────────────────────────────────────────────────────

func report(res *mutation.Result, err error) error {
	if err != nil {
		kind, _ := mutation.KindOf(err)
		switch kind {
		case mutation.KindTransient:
			return fmt.Errorf("%w (nothing changed locally; safe to retry)", err)
		case mutation.KindConflict:
			return fmt.Errorf("%w (refresh before retrying)", err)
		}
		return err
	}
	fmt.Printf("%s %s [%s]\n", res.Op, res.State, res.MutationID)
	return nil
}

func printJobs(jobs []model.Job, now time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION\tSALARY\tAPPLICANTS\tPOSTED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			j.ID, j.Title, orDash(j.CompanyName()), j.Location, fmtSalary(j.Salary), j.ApplicantCount(), ago(j.CreatedAt, now))
	}
	_ = w.Flush()
}

func printAdminJobs(jobs []model.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tROLE\tPOSITIONS\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", j.ID, orDash(j.CompanyName()), j.Title, j.Position, j.CreatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func printUsers(users []model.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Fullname, u.Email, u.Role)
	}
	_ = w.Flush()
}

func ago(created, now time.Time) string {
	switch d := model.DaysAgo(created, now); d {
	case 0:
		return "Today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", d)
	}
}

func fmtSalary(s float64) string {
	if s == 0 {
		return "-"
	}
	return strconv.FormatFloat(s, 'f', -1, 64) + " LPA"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── Option parsing ──────────────────────────────────────────────────────────

func flag(opts docopt.Opts, key string) bool {
	v, _ := opts.Bool(key)
	return v
}

func str(opts docopt.Opts, key string) string {
	v, _ := opts.String(key)
	return v
}

func jobFieldsFrom(opts docopt.Opts) (model.JobFields, error) {
	salary, err := strconv.ParseFloat(str(opts, "--salary"), 64)
	if err != nil {
		return model.JobFields{}, fmt.Errorf("--salary must be a number: %w", err)
	}
	position, err := strconv.Atoi(str(opts, "--position"))
	if err != nil {
		return model.JobFields{}, fmt.Errorf("--position must be a whole number: %w", err)
	}
	var reqs []string
	for _, r := range strings.Split(str(opts, "--requirements"), ",") {
		if r = strings.TrimSpace(r); r != "" {
			reqs = append(reqs, r)
		}
	}
	return model.JobFields{
		Title:           str(opts, "--title"),
		Description:     str(opts, "--description"),
		Requirements:    reqs,
		Salary:          salary,
		Location:        str(opts, "--location"),
		JobType:         str(opts, "--job-type"),
		ExperienceLevel: str(opts, "--experience"),
		Position:        position,
		CompanyID:       str(opts, "--company"),
	}, nil
}
