package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/profile"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_, err = s.users.Register(r.Context(), auth.RegisterInput{
		Fullname:    f.get("fullname"),
		Email:       f.get("email"),
		PhoneNumber: f.get("phoneNumber"),
		Password:    f.values.Get("password"),
		Role:        f.get("role"),
		Photo:       f.file,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Account created successfully.", nil)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.users.Login(r.Context(), f.get("email"), f.values.Get("password"), f.get("role"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, sess.Token, int(s.issuer.TTL().Seconds()))
	ok(w, http.StatusOK, "Welcome back "+sess.User.Fullname, envelope{"user": sess.User})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -1)
	ok(w, http.StatusOK, "Logged out successfully.", nil)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ─── Profile ─────────────────────────────────────────────────────────────────

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.profiles.Update(r.Context(), userID, profile.UpdateInput{
		Fullname:    f.get("fullname"),
		Email:       f.get("email"),
		PhoneNumber: f.get("phoneNumber"),
		Bio:         f.get("bio"),
		Skills:      f.get("skills"),
		Resume:      f.file,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Profile updated successfully.", envelope{"user": u})
}

func (s *Server) updatePhoto(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.profiles.UpdatePhoto(r.Context(), userID, f.file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Profile photo updated successfully", envelope{"user": u})
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	res, err := s.profiles.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(res.Filename)
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// ─── Saved jobs ──────────────────────────────────────────────────────────────

func (s *Server) saveJob(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.saved.Save(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Job saved successfully", nil)
}

func (s *Server) unsaveJob(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.saved.Unsave(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Job removed from saved jobs", nil)
}

func (s *Server) savedJobs(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.saved.List(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"jobs": list})
}

// ─── Media ───────────────────────────────────────────────────────────────────

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	b, err := s.media.Image(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Blob ids are content hashes, so the bytes behind an id never change.
	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Data)
}
