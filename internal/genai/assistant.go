// Package genai holds the AI helpers offered to job seekers: cover letters,
// resume tips, resume/job matching and a chat assistant. The language model
// is an opaque collaborator behind llms.Model.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/profile"
)

const (
	maxChatMessage = 2000
	historyLimit   = 100
	maxPromptInput = 20000
)

// JobSource resolves job ids.
type JobSource interface {
	JobByID(ctx context.Context, id string) (*domain.Job, error)
}

// ResumeSource returns a user's stored resume.
type ResumeSource interface {
	Resume(ctx context.Context, userID string) (*profile.Resume, error)
}

// JobRef points at a stored job or carries a pasted description.
type JobRef struct {
	JobID       string
	Description string
}

// Assistant wraps the model with timeouts and error mapping.
type Assistant struct {
	model   llms.Model
	jobs    JobSource
	resumes ResumeSource
	history HistoryStore
	timeout time.Duration
	now     func() time.Time
}

// NewAssistant returns an Assistant. A nil model makes every call fail with
// Unavailable.
func NewAssistant(model llms.Model, jobs JobSource, resumes ResumeSource, history HistoryStore, timeout time.Duration) *Assistant {
	return &Assistant{model: model, jobs: jobs, resumes: resumes, history: history, timeout: timeout, now: time.Now}
}

// CoverLetter drafts a cover letter from the caller's resume and a job.
func (a *Assistant) CoverLetter(ctx context.Context, userID string, ref JobRef) (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	jd, _, err := a.jobDescription(ctx, ref)
	if err != nil {
		return "", err
	}
	resume, err := a.storedResumeText(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, fmt.Sprintf(coverLetterPrompt, jd, resume), llms.WithTemperature(0.7))
}

// ResumeTips returns improvement suggestions for upload, or for the stored
// resume when upload is nil.
func (a *Assistant) ResumeTips(ctx context.Context, userID string, upload *domain.Upload) (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	if upload != nil {
		text, err = ExtractText(upload.Data, upload.ContentType)
		if err != nil {
			return "", apperr.Validation("Could not read the uploaded resume")
		}
	} else if text, err = a.storedResumeText(ctx, userID); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("Resume has no readable text")
	}
	return a.generate(ctx, fmt.Sprintf(resumeTipsPrompt, text), llms.WithTemperature(0.4))
}

// MatchJob scores the caller's resume against a job.
func (a *Assistant) MatchJob(ctx context.Context, userID string, ref JobRef) (*MatchResult, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	jd, keywords, err := a.jobDescription(ctx, ref)
	if err != nil {
		return nil, err
	}
	resume, err := a.storedResumeText(ctx, userID)
	if err != nil {
		return nil, err
	}
	reply, err := a.generate(ctx, fmt.Sprintf(matchPrompt, resume, jd), llms.WithTemperature(0.3))
	if err != nil {
		return nil, err
	}
	if res, ok := parseMatch(reply); ok {
		return res, nil
	}
	slog.Warn("match reply unparsable, using keyword score", "user", userID)
	if len(keywords) == 0 {
		keywords = Keywords(jd)
	}
	return &MatchResult{
		Score:     KeywordScore(resume, keywords),
		Strengths: []string{},
		Gaps:      []string{},
		Fallback:  true,
	}, nil
}

// Chat sends message with the caller's recent history and stores both turns.
func (a *Assistant) Chat(ctx context.Context, userID, message string) (*Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("Message is required")
	}
	if utf8.RuneCountInString(message) > maxChatMessage {
		return nil, apperr.Validation("Message must be at most %d characters", maxChatMessage)
	}
	if err := a.ready(); err != nil {
		return nil, err
	}

	past, err := a.history.Recent(ctx, userID, historyLimit)
	if err != nil {
		return nil, apperr.Internal(err, "load chat history")
	}

	content := make([]llms.MessageContent, 0, len(past)+2)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, chatSystemPrompt))
	for _, m := range past {
		kind := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			kind = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(kind, m.Content))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, message))

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.model.GenerateContent(cctx, content, llms.WithTemperature(0.7))
	if err != nil {
		return nil, modelError(cctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Unavailable("The AI service returned no answer")
	}

	now := a.now().UTC()
	user := Message{Role: RoleUser, Content: message, At: now}
	reply := Message{Role: RoleAssistant, Content: strings.TrimSpace(resp.Choices[0].Content), At: now}
	if err := a.history.Append(ctx, userID, user, reply); err != nil {
		slog.Warn("store chat history failed", "user", userID, "err", err)
	}
	return &reply, nil
}

// History returns up to the last 100 chat messages, oldest first.
func (a *Assistant) History(ctx context.Context, userID string) ([]Message, error) {
	msgs, err := a.history.Recent(ctx, userID, historyLimit)
	if err != nil {
		return nil, apperr.Internal(err, "load chat history")
	}
	return msgs, nil
}

// ClearHistory forgets the caller's conversation.
func (a *Assistant) ClearHistory(ctx context.Context, userID string) error {
	if err := a.history.Clear(ctx, userID); err != nil {
		return apperr.Internal(err, "clear chat history")
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (a *Assistant) ready() error {
	if a == nil || a.model == nil {
		return apperr.Unavailable("GenAI features are not configured")
	}
	return nil
}

func (a *Assistant) generate(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	out, err := llms.GenerateFromSinglePrompt(cctx, a.model, prompt, opts...)
	if err != nil {
		return "", modelError(cctx, err)
	}
	return strings.TrimSpace(out), nil
}

func modelError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Timeout(err, "The AI service took too long to respond")
	}
	slog.Error("model call failed", "err", err)
	return apperr.Unavailable("The AI service is unavailable")
}

// jobDescription returns the text to prompt with and, for stored jobs, the
// requirement keywords.
func (a *Assistant) jobDescription(ctx context.Context, ref JobRef) (string, []string, error) {
	if ref.JobID == "" {
		jd := strings.TrimSpace(ref.Description)
		if jd == "" {
			return "", nil, apperr.Validation("jobId or jobDescription is required")
		}
		return truncate(jd), nil, nil
	}
	job, err := a.jobs.JobByID(ctx, ref.JobID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, apperr.NotFound("Job not found.")
	}
	if err != nil {
		return "", nil, apperr.Internal(err, "load job")
	}
	jd := fmt.Sprintf("%s\n\n%s\n\nRequirements: %s", job.Title, job.Description, strings.Join(job.Requirements, ", "))
	return truncate(jd), job.Requirements, nil
}

func (a *Assistant) storedResumeText(ctx context.Context, userID string) (string, error) {
	r, err := a.resumes.Resume(ctx, userID)
	if err != nil {
		return "", err
	}
	text, err := ExtractText(r.Data, r.ContentType)
	if err != nil {
		slog.Warn("resume text extraction failed", "user", userID, "err", err)
		return "", apperr.Validation("Could not read the stored resume")
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("Resume has no readable text")
	}
	return truncate(text), nil
}

func truncate(s string) string {
	if len(s) <= maxPromptInput {
		return s
	}
	return strings.ToValidUTF8(s[:maxPromptInput], "")
}
