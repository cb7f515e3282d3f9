package api

import (
	"net/http"

	"jobportal/board-service/internal/genai"
)

func jobRef(f *form) genai.JobRef {
	return genai.JobRef{JobID: f.get("jobId"), Description: f.get("jobDescription")}
}

func (s *Server) coverLetter(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	letter, err := s.assistant.CoverLetter(r.Context(), userID, jobRef(f))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"cover_letter": letter})
}

func (s *Server) resumeTips(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tips, err := s.assistant.ResumeTips(r.Context(), userID, f.file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"tips": tips})
}

func (s *Server) jdMatch(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.assistant.MatchJob(r.Context(), userID, jobRef(f))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"data": res})
}

func (s *Server) chatSend(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := s.assistant.Chat(r.Context(), userID, f.values.Get("message"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, reply.Content, envelope{"reply": reply})
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request, userID string) {
	hist, err := s.assistant.History(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", envelope{"history": hist})
}

func (s *Server) chatClear(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.assistant.ClearHistory(r.Context(), userID); err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Chat history cleared", nil)
}
