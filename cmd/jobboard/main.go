// jobboard: command-line client for the job board.
//
// Keeps a local cache of jobs (plus companies and users for admins) synced
// from the authority, derives search and filter views from it, tracks saved
// jobs, and sends admin writes through the mutation coordinator so the
// cache only reflects what the authority confirmed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"

	"jobmate/board-client/internal/config"
	"jobmate/board-client/internal/db"
	"jobmate/board-client/internal/events"
	"jobmate/board-client/internal/gateway"
	"jobmate/board-client/internal/mutation"
	"jobmate/board-client/internal/notify"
	"jobmate/board-client/internal/saved"
	"jobmate/board-client/internal/store"
	"jobmate/board-client/internal/syncer"
)

const version = "1.0.0"

const usage = `Job board client.

Configuration is read from the environment (or a .env file):
    API_URL, API_TOKEN, REFRESH_INTERVAL, HTTP_TIMEOUT, REDIS_URL, SAVED_DB

Usage:
    jobboard jobs [--search=<q>] [--facet=<facet>] [--latest=<n>]
    jobboard facets
    jobboard job <job_id>
    jobboard apply <job_id>
    jobboard save <job_id>
    jobboard unsave <job_id>
    jobboard saved
    jobboard watch
    jobboard admin jobs [--search=<q>]
    jobboard admin companies
    jobboard admin users
    jobboard admin create-job --title=<title> --description=<text> --requirements=<list> --salary=<n> --location=<loc> --job-type=<type> --experience=<level> --position=<n> --company=<company_id>
    jobboard admin update-job <job_id> --title=<title> --description=<text> --requirements=<list> --salary=<n> --location=<loc> --job-type=<type> --experience=<level> --position=<n> --company=<company_id>
    jobboard admin delete-job <job_id>
    jobboard admin create-company --name=<name> [--website=<url>] [--location=<loc>] [--description=<text>]
    jobboard admin (accept | reject) <company_id>
    jobboard admin delete-company <company_id>
    jobboard admin create-user --fullname=<name> --email=<email> --phone=<phone> --password=<pw> --role=<role>
    jobboard admin delete-user <user_id>
    jobboard -h | --help
    jobboard --version

Options:
    -h --help             Show this screen.
    --version             Show version.
    --search=<q>          Case-insensitive title search (title or company in admin jobs).
    --facet=<facet>       Facet filter as Category:Value, e.g. Location:Pune.
    --latest=<n>          Only show the first n jobs.
    --requirements=<list> Comma-separated requirements.`

// app is everything one invocation needs, built once.
type app struct {
	cfg     *config.Config
	session *gateway.Session
	store   *store.Store
	sync    *syncer.Syncer
	coord   *mutation.Coordinator
	saved   *saved.Set
	notify  *notify.Projector
	closers []func()
}

func main() {
	_ = godotenv.Load()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		log.Fatalf("[jobboard] %v", err)
	}

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobboard] Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("[jobboard] %v", err)
	}
	defer a.close()

	if err := a.dispatch(ctx, opts); err != nil {
		a.close()
		log.Fatalf("[jobboard] %v", err)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, store: store.New(), notify: notify.NewProjector()}

	// ── Session & gateway ───────────────────────────────────────────────────
	sess, err := gateway.NewSession(cfg.APIToken)
	if err != nil {
		return nil, err
	}
	sess.OnInvalidate(a.store.ClearRoleGated)
	sess.OnInvalidate(func() {
		log.Println("[jobboard] Session expired or revoked; log in again and update API_TOKEN")
	})
	a.session = sess

	client, err := gateway.NewClient(cfg.APIURL, sess, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	a.sync = syncer.New(client, a.store, sess)

	// ── Redis (optional) ────────────────────────────────────────────────────
	var pub events.Publisher = events.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[jobboard] Redis unavailable, events disabled: %v", err)
		} else {
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			pub = events.NewRedisPublisher(rdb)
		}
	}
	a.coord = mutation.New(a.store, client,
		mutation.WithIdentity(sess),
		mutation.WithPublisher(pub),
	)

	// ── Saved jobs ──────────────────────────────────────────────────────────
	if cfg.SavedDB != "" {
		sq, err := saved.OpenSQLite(cfg.SavedDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = sq.Close() })
		if a.saved, err = saved.Open(ctx, sq); err != nil {
			return nil, err
		}
	} else {
		a.saved = saved.New()
	}

	return a, nil
}

func (a *app) close() {
	a.coord.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
