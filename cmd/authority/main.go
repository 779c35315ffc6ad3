// jobmate-authority: reference job-board authority.
//
// Serves the /api/v1 jobs, companies and users contract the board client
// talks to. Records live in PostgreSQL when DATABASE_URL is set, in memory
// otherwise. Company approval is enforced server-side: only pending
// companies can be accepted or rejected.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"

	"jobmate/board-client/internal/authority"
	"jobmate/board-client/internal/config"
	"jobmate/board-client/internal/db"
	"jobmate/board-client/internal/model"
)

const version = "1.0.0"

const usage = `Reference job-board authority.

Usage:
    authority serve
    authority token <user_id> [--role=<role>] [--ttl=<ttl>]
    authority -h | --help
    authority --version

Options:
    -h --help       Show this screen.
    --version       Show version.
    --role=<role>   student, recruiter or admin [default: admin].
    --ttl=<ttl>     Token lifetime [default: 24h].`

func main() {
	_ = godotenv.Load()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		log.Fatalf("[authority] %v", err)
	}

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.LoadAuthority()
	if err != nil {
		log.Fatalf("[authority] Config error: %v", err)
	}

	if token, _ := opts.Bool("token"); token {
		issueToken(cfg, opts)
		return
	}
	serve(cfg)
}

func issueToken(cfg *config.AuthorityConfig, opts docopt.Opts) {
	userID, _ := opts.String("<user_id>")
	role, _ := opts.String("--role")
	ttlStr, _ := opts.String("--ttl")

	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Fatalf("[authority] Invalid --ttl: %v", err)
	}
	switch r := model.Role(role); r {
	case model.RoleStudent, model.RoleRecruiter, model.RoleAdmin:
	default:
		log.Fatalf("[authority] Invalid --role %q", role)
	}

	tok, err := authority.IssueToken([]byte(cfg.JWTSecret), userID, model.Role(role), ttl)
	if err != nil {
		log.Fatalf("[authority] Sign token: %v", err)
	}
	fmt.Println(tok)
}

func serve(cfg *config.AuthorityConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ─────────────────────────────────────────────────────────────
	var repo authority.Repository
	if cfg.DatabaseURL != "" {
		log.Println("[authority] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[authority] PostgreSQL: %v", err)
		}
		defer pool.Close()

		pg := authority.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("[authority] Schema: %v", err)
		}
		repo = pg
		log.Println("[authority] PostgreSQL connected ✓")
	} else {
		repo = authority.NewMemory()
		log.Println("[authority] DATABASE_URL not set, serving from memory")
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      authority.NewServer(repo, []byte(cfg.JWTSecret)).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[authority] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[authority] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[authority] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[authority] Shutdown error: %v", err)
	}
	log.Println("[authority] Stopped.")
}
