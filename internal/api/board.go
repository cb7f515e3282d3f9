package api

import (
	"net/http"

	"jobportal/board-service/internal/company"
	"jobportal/board-service/internal/jobs"
)

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Server) postJob(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	job, err := s.jobs.PostJob(r.Context(), userID, jobs.PostJobInput{
		Title:           f.get("title"),
		Description:     f.get("description"),
		Requirements:    f.get("requirements"),
		Salary:          f.get("salary"),
		Location:        f.get("location"),
		JobType:         f.get("jobType"),
		ExperienceLevel: f.get("experienceLevel"),
		Position:        f.get("position"),
		CompanyID:       f.get("companyId"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "New job created successfully.", envelope{"job": job})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.ListJobs(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"jobs": list})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"job": job})
}

func (s *Server) adminJobs(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.jobs.ListJobsByCreator(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"jobs": list})
}

// ─── Applications ────────────────────────────────────────────────────────────

// applicationGET handles GET /application/apply/{id} and
// GET /application/{id}/applicants.
func (s *Server) applicationGET(w http.ResponseWriter, r *http.Request, userID string) {
	seg, action := r.PathValue("seg"), r.PathValue("action")
	switch {
	case seg == "apply":
		s.applyTo(w, r, userID, action)
	case action == "applicants":
		s.applicants(w, r, userID, seg)
	default:
		s.notFound(w, r)
	}
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, userID string) {
	s.applyTo(w, r, userID, r.PathValue("id"))
}

func (s *Server) applyTo(w http.ResponseWriter, r *http.Request, userID, jobID string) {
	app, err := s.applications.Apply(r.Context(), userID, jobID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Job applied successfully.", envelope{"application": app})
}

func (s *Server) applicants(w http.ResponseWriter, r *http.Request, userID, jobID string) {
	job, err := s.applications.Applicants(r.Context(), userID, jobID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"job": job})
}

func (s *Server) appliedJobs(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.applications.AppliedJobs(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"application": list})
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.applications.UpdateStatus(r.Context(), userID, r.PathValue("id"), f.get("status"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Status updated successfully.", envelope{"application": app})
}

// ─── Companies ───────────────────────────────────────────────────────────────

func (s *Server) registerCompany(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.companies.Register(r.Context(), userID, f.get("companyName"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Company registered successfully.", envelope{"company": c})
}

func (s *Server) myCompanies(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.companies.Mine(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"companies": list})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request, _ string) {
	c, err := s.companies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"company": c})
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.companies.Update(r.Context(), userID, r.PathValue("id"), company.UpdateInput{
		Name:        f.get("name"),
		Description: f.get("description"),
		Website:     f.get("website"),
		Location:    f.get("location"),
		Logo:        f.file,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Company information updated.", envelope{"company": c})
}
