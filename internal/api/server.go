// Package api is the HTTP transport of the board service.
//
// Routes (base /api/v1):
//
//	POST   /user/register                    → create account (multipart photo)
//	POST   /user/login                       → open session, set token cookie
//	GET    /user/logout                      → clear token cookie
//	POST   /user/profile/update              → partial profile update, resume upload
//	POST   /user/profile/photo               → replace profile photo
//	GET    /user/resume/{id}                 → stream a user's resume
//	POST   /user/save-job/{id}               → bookmark a job
//	DELETE /user/save-job/{id}               → remove bookmark
//	GET    /user/saved-jobs                  → caller's bookmarks
//	POST   /job/post                         → create job
//	GET    /job/get?keyword=                 → search jobs
//	GET    /job/get/{id}                     → one job with applications
//	GET    /job/getadminjobs                 → caller's postings
//	GET    /application/apply/{id}           → apply (POST also accepted)
//	GET    /application/get                  → caller's applications
//	GET    /application/{id}/applicants      → job with its applicants
//	POST   /application/status/{id}/update   → accept or reject
//	POST   /company/register                 → create company
//	GET    /company/get                      → caller's companies
//	GET    /company/get/{id}                 → one company
//	PUT    /company/update/{id}              → edit company, logo upload
//	GET    /media/{id}                       → image blob
//	POST   /genai/cover-letter               → draft cover letter
//	POST   /genai/resume-tips                → resume suggestions
//	POST   /genai/jd-match                   → resume/job match score
//	POST   /genai/chat/send                  → chat turn
//	GET    /genai/chat/history               → chat transcript
//	DELETE /genai/chat/clear                 → forget transcript
package api

import (
	"context"
	"net/http"
	"time"

	"jobportal/board-service/internal/applications"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/company"
	"jobportal/board-service/internal/config"
	"jobportal/board-service/internal/genai"
	"jobportal/board-service/internal/jobs"
	"jobportal/board-service/internal/media"
	"jobportal/board-service/internal/profile"
	"jobportal/board-service/internal/saved"
)

const version = "1.0.0"

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

// Deps are the collaborators the transport delegates to.
type Deps struct {
	Config       *config.Config
	Gate         *auth.Gate
	Issuer       *auth.Issuer
	Auth         *auth.Service
	Jobs         *jobs.Service
	Applications *applications.Service
	Saved        *saved.Service
	Companies    *company.Service
	Profiles     *profile.Service
	Media        *media.Library
	Assistant    *genai.Assistant
	// Checks are run by /health/db, keyed by dependency name.
	Checks map[string]Check
}

// Server holds the handler dependencies.
type Server struct {
	gate         *auth.Gate
	issuer       *auth.Issuer
	users        *auth.Service
	jobs         *jobs.Service
	applications *applications.Service
	saved        *saved.Service
	companies    *company.Service
	profiles     *profile.Service
	media        *media.Library
	assistant    *genai.Assistant
	checks       map[string]Check

	env          string
	production   bool
	cookieSecure bool
	origins      []string
	maxBody      int64
	now          func() time.Time
}

// NewServer returns a configured Server.
func NewServer(d Deps) *Server {
	return &Server{
		gate:         d.Gate,
		issuer:       d.Issuer,
		users:        d.Auth,
		jobs:         d.Jobs,
		applications: d.Applications,
		saved:        d.Saved,
		companies:    d.Companies,
		profiles:     d.Profiles,
		media:        d.Media,
		assistant:    d.Assistant,
		checks:       d.Checks,
		env:          d.Config.Env,
		production:   d.Config.Production(),
		cookieSecure: d.Config.CookieSecure,
		origins:      d.Config.CORSOrigins,
		maxBody:      d.Config.MaxUploadBytes + 1<<20,
		now:          time.Now,
	}
}

// Handler returns the full middleware chain around the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.recoverPanics(logRequests(s.cors(s.rateLimit(mux))))
}

// RegisterRoutes mounts every route on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	const v1 = "/api/v1"

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /health/db", s.healthDeps)

	// ── Users ───────────────────────────────────────────────────────────────
	mux.HandleFunc("POST "+v1+"/user/register", s.register)
	mux.HandleFunc("POST "+v1+"/user/login", s.login)
	mux.HandleFunc("GET "+v1+"/user/logout", s.logout)
	mux.HandleFunc("POST "+v1+"/user/profile/update", s.authed(s.updateProfile))
	mux.HandleFunc("POST "+v1+"/user/profile/photo", s.authed(s.updatePhoto))
	mux.HandleFunc("GET "+v1+"/user/resume/{id}", s.resume)
	mux.HandleFunc("POST "+v1+"/user/save-job/{id}", s.authed(s.saveJob))
	mux.HandleFunc("DELETE "+v1+"/user/save-job/{id}", s.authed(s.unsaveJob))
	mux.HandleFunc("GET "+v1+"/user/saved-jobs", s.authed(s.savedJobs))

	// ── Jobs ────────────────────────────────────────────────────────────────
	mux.HandleFunc("POST "+v1+"/job/post", s.authed(s.postJob))
	mux.HandleFunc("GET "+v1+"/job/get", s.listJobs)
	mux.HandleFunc("GET "+v1+"/job/get/{id}", s.getJob)
	mux.HandleFunc("GET "+v1+"/job/getadminjobs", s.authed(s.adminJobs))

	// ── Applications ────────────────────────────────────────────────────────
	// apply/{id} and {id}/applicants overlap as GET patterns, so one
	// pattern dispatches both.
	mux.HandleFunc("GET "+v1+"/application/{seg}/{action}", s.authed(s.applicationGET))
	mux.HandleFunc("POST "+v1+"/application/apply/{id}", s.authed(s.apply))
	mux.HandleFunc("GET "+v1+"/application/get", s.authed(s.appliedJobs))
	mux.HandleFunc("POST "+v1+"/application/status/{id}/update", s.authed(s.updateStatus))

	// ── Companies ───────────────────────────────────────────────────────────
	mux.HandleFunc("POST "+v1+"/company/register", s.authed(s.registerCompany))
	mux.HandleFunc("GET "+v1+"/company/get", s.authed(s.myCompanies))
	mux.HandleFunc("GET "+v1+"/company/get/{id}", s.authed(s.getCompany))
	mux.HandleFunc("PUT "+v1+"/company/update/{id}", s.authed(s.updateCompany))

	// ── Media ───────────────────────────────────────────────────────────────
	mux.HandleFunc("GET "+v1+"/media/{id}", s.serveMedia)

	// ── GenAI ───────────────────────────────────────────────────────────────
	mux.HandleFunc("POST "+v1+"/genai/cover-letter", s.authed(s.coverLetter))
	mux.HandleFunc("POST "+v1+"/genai/resume-tips", s.authed(s.resumeTips))
	mux.HandleFunc("POST "+v1+"/genai/jd-match", s.authed(s.jdMatch))
	mux.HandleFunc("POST "+v1+"/genai/chat/send", s.authed(s.chatSend))
	mux.HandleFunc("GET "+v1+"/genai/chat/history", s.authed(s.chatHistory))
	mux.HandleFunc("DELETE "+v1+"/genai/chat/clear", s.authed(s.chatClear))

	mux.HandleFunc("/", s.notFound)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		"success": false,
		"message": "Route " + r.URL.RequestURI() + " not found",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"status":      "OK",
		"message":     "Server is running",
		"service":     "board-service",
		"version":     version,
		"environment": s.env,
		"timestamp":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) healthDeps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	body := envelope{"checks": results, "timestamp": s.now().UTC().Format(time.RFC3339)}
	if !healthy {
		body["status"] = "ERROR"
		body["message"] = "Database connection failed"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "OK"
	body["message"] = "Database connection is healthy"
	writeJSON(w, http.StatusOK, body)
}
