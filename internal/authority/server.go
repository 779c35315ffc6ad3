package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

// Server exposes a Repository over the /api/v1 HTTP contract.
type Server struct {
	repo   Repository
	secret []byte
}

func NewServer(repo Repository, secret []byte) *Server {
	return &Server{repo: repo, secret: secret}
}

type principalKey struct{}

func principalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/jobs", s.handleListJobs)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/jobs/{id}", s.handleGetJob)
			r.Post("/jobs/{id}/apply", s.handleApply)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.RoleAdmin, model.RoleRecruiter))
				r.Post("/jobs", s.handleCreateJob)
				r.Put("/jobs/{id}", s.handleUpdateJob)
				r.Delete("/jobs/{id}", s.handleDeleteJob)
				r.Post("/companies", s.handleCreateCompany)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.RoleAdmin))
				r.Get("/companies", s.handleListCompanies)
				r.Put("/companies/{id}/{status}", s.handleSetCompanyStatus)
				r.Delete("/companies/{id}", s.handleDeleteCompany)
				r.Get("/users", s.handleListUsers)
				r.Post("/users", s.handleCreateUser)
				r.Delete("/users/{id}", s.handleDeleteUser)
			})
		})
	})

	return r
}

// ─── Middleware ──────────────────────────────────────────────────────────────

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeErr(w, http.StatusUnauthorized, errors.New("user not authenticated"))
			return
		}
		p, err := verifyToken(s.secret, raw)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, fmt.Errorf("invalid token: %w", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func requireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, principalFrom(r.Context()).Role) {
				writeErr(w, http.StatusForbidden, errors.New("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.repo.ListJobs(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.repo.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "job": job})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var f model.JobFields
	if !decodeValid(w, r, &f) {
		return
	}
	job, err := s.repo.CreateJob(r.Context(), f, principalFrom(r.Context()).UserID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "New job created successfully.", "job": job})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var f model.JobFields
	if !decodeValid(w, r, &f) {
		return
	}
	job, err := s.repo.UpdateJob(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job updated successfully.", "job": job})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job deleted successfully."})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	app, err := s.repo.ApplyToJob(r.Context(), chi.URLParam(r, "id"), principalFrom(r.Context()).UserID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Job applied successfully.", "application": app})
}

// ─── Companies ───────────────────────────────────────────────────────────────

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.repo.ListCompanies(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "companies": companies})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var f model.CompanyFields
	if !decodeValid(w, r, &f) {
		return
	}
	if f.UserID == "" {
		f.UserID = principalFrom(r.Context()).UserID
	}
	c, err := s.repo.CreateCompany(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Company registered successfully.", "company": c})
}

func (s *Server) handleSetCompanyStatus(w http.ResponseWriter, r *http.Request) {
	to, err := approval.ParseStatus(chi.URLParam(r, "status"))
	if err != nil || !approval.IsDecision(to) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid company action %q", chi.URLParam(r, "status")))
		return
	}
	c, err := s.repo.SetCompanyStatus(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("Company %s.", to), "company": c})
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Company deleted successfully."})
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.ListUsers(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var f model.UserFields
	if !decodeValid(w, r, &f) {
		return
	}
	u, err := s.repo.CreateUser(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Account created successfully.", "user": u})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User deleted successfully."})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return false
	}
	if err := model.Validate(dst); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// fail maps repository errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		writeErr(w, http.StatusNotFound, err)
	case errors.Is(err, ErrConflict):
		writeErr(w, http.StatusConflict, err)
	case errors.As(err, &verr):
		writeErr(w, http.StatusBadRequest, err)
	default:
		slog.Error("authority request failed", "err", err)
		writeErr(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"success": false, "message": err.Error()})
}
