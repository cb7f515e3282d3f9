package genai_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/genai"
	"jobportal/board-service/internal/profile"
)

// fakeModel answers every call with reply (or err) and records the prompts.
type fakeModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	prompts [][]llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, msgs)
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}

func (m *fakeModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	for _, msg := range m.prompts[len(m.prompts)-1] {
		for _, p := range msg.Parts {
			if t, ok := p.(llms.TextContent); ok {
				b.WriteString(t.Text)
			}
		}
	}
	return b.String()
}

type jobsStub map[string]*domain.Job

func (s jobsStub) JobByID(_ context.Context, id string) (*domain.Job, error) {
	if j, ok := s[id]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

type resumeStub map[string]string

func (s resumeStub) Resume(_ context.Context, userID string) (*profile.Resume, error) {
	text, ok := s[userID]
	if !ok {
		return nil, apperr.NotFound("Resume not found")
	}
	return &profile.Resume{Filename: "cv.txt", ContentType: "text/plain", Data: []byte(text)}, nil
}

func newAssistant(m llms.Model) *genai.Assistant {
	jobs := jobsStub{"j1": {ID: "j1", Title: "Go Developer", Description: "Build services", Requirements: []string{"Go", "Postgres", "Kubernetes", "gRPC"}}}
	resumes := resumeStub{"u1": "Five years of Go and Postgres. Built gRPC services."}
	return genai.NewAssistant(m, jobs, resumes, genai.NewMemoryHistory(), time.Second)
}

func TestNilModelIsUnavailable(t *testing.T) {
	a := newAssistant(nil)
	if _, err := a.CoverLetter(context.Background(), "u1", genai.JobRef{JobID: "j1"}); apperr.KindOf(err) != apperr.KindUnavailable {
		t.Errorf("CoverLetter with nil model kind = %s, want unavailable", apperr.KindOf(err))
	}
}

func TestCoverLetter(t *testing.T) {
	m := &fakeModel{reply: "  Dear hiring manager  "}
	a := newAssistant(m)
	ctx := context.Background()

	got, err := a.CoverLetter(ctx, "u1", genai.JobRef{JobID: "j1"})
	if err != nil {
		t.Fatalf("CoverLetter() unexpected error: %v", err)
	}
	if got != "Dear hiring manager" {
		t.Errorf("CoverLetter() = %q", got)
	}
	if p := m.lastPrompt(); !strings.Contains(p, "Build services") || !strings.Contains(p, "Five years of Go") {
		t.Errorf("prompt missing job or resume: %q", p)
	}

	cases := []struct {
		user string
		ref  genai.JobRef
		want apperr.Kind
	}{
		{"u1", genai.JobRef{JobID: "missing"}, apperr.KindNotFound},
		{"u1", genai.JobRef{}, apperr.KindValidation},
		{"nobody", genai.JobRef{Description: "Pasted JD"}, apperr.KindNotFound},
	}
	for _, c := range cases {
		if _, err := a.CoverLetter(ctx, c.user, c.ref); apperr.KindOf(err) != c.want {
			t.Errorf("CoverLetter(%s, %+v) kind = %s, want %s", c.user, c.ref, apperr.KindOf(err), c.want)
		}
	}
}

func TestMatchJob_ParsesFencedJSON(t *testing.T) {
	m := &fakeModel{reply: "```json\n{\"score\": 87.6, \"strengths\": [\"Go\"], \"gaps\": [\"Kubernetes\"]}\n```"}
	res, err := newAssistant(m).MatchJob(context.Background(), "u1", genai.JobRef{JobID: "j1"})
	if err != nil {
		t.Fatalf("MatchJob() unexpected error: %v", err)
	}
	if res.Score != 88 || res.Fallback || len(res.Strengths) != 1 || res.Gaps[0] != "Kubernetes" {
		t.Errorf("MatchJob() = %+v", res)
	}
}

func TestMatchJob_ProseAroundJSONAndClamp(t *testing.T) {
	m := &fakeModel{reply: "Here you go: {\"score\": 140} hope it helps"}
	res, err := newAssistant(m).MatchJob(context.Background(), "u1", genai.JobRef{JobID: "j1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 100 || res.Strengths == nil || res.Gaps == nil {
		t.Errorf("MatchJob() = %+v, want clamped score and empty lists", res)
	}
}

func TestMatchJob_FallsBackToKeywords(t *testing.T) {
	m := &fakeModel{reply: "I cannot produce JSON today"}
	res, err := newAssistant(m).MatchJob(context.Background(), "u1", genai.JobRef{JobID: "j1"})
	if err != nil {
		t.Fatal(err)
	}
	// Go, Postgres and gRPC of four requirements appear in the resume.
	if !res.Fallback || res.Score != 75 {
		t.Errorf("MatchJob() = %+v, want fallback score 75", res)
	}
}

func TestGenerate_TimeoutAndFailure(t *testing.T) {
	slow := &fakeModel{reply: "late", delay: time.Second}
	a := genai.NewAssistant(slow, jobsStub{}, resumeStub{"u1": "cv"}, genai.NewMemoryHistory(), 10*time.Millisecond)
	if _, err := a.ResumeTips(context.Background(), "u1", nil); apperr.KindOf(err) != apperr.KindTimeout {
		t.Errorf("ResumeTips(slow) kind = %s, want timeout", apperr.KindOf(err))
	}

	broken := &fakeModel{err: errors.New("quota exceeded")}
	if _, err := newAssistant(broken).ResumeTips(context.Background(), "u1", nil); apperr.KindOf(err) != apperr.KindUnavailable {
		t.Errorf("ResumeTips(broken) kind = %s, want unavailable", apperr.KindOf(err))
	}
}

func TestResumeTips_Upload(t *testing.T) {
	m := &fakeModel{reply: "1. Add metrics"}
	a := newAssistant(m)
	got, err := a.ResumeTips(context.Background(), "nobody", &domain.Upload{Filename: "cv.txt", ContentType: "text/plain", Data: []byte("Uploaded resume text")})
	if err != nil {
		t.Fatalf("ResumeTips(upload) unexpected error: %v", err)
	}
	if got != "1. Add metrics" || !strings.Contains(m.lastPrompt(), "Uploaded resume text") {
		t.Errorf("ResumeTips() = %q, prompt %q", got, m.lastPrompt())
	}
}

func TestChat_HistoryRoundTrip(t *testing.T) {
	m := &fakeModel{reply: "Try tailoring your CV."}
	a := newAssistant(m)
	ctx := context.Background()

	if _, err := a.Chat(ctx, "u1", "   "); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Chat(blank) kind = %s, want validation", apperr.KindOf(err))
	}
	if _, err := a.Chat(ctx, "u1", strings.Repeat("x", 2001)); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Chat(2001 chars) kind = %s, want validation", apperr.KindOf(err))
	}

	reply, err := a.Chat(ctx, "u1", "How do I stand out?")
	if err != nil {
		t.Fatalf("Chat() unexpected error: %v", err)
	}
	if reply.Role != genai.RoleAssistant || reply.Content != "Try tailoring your CV." {
		t.Errorf("Chat() = %+v", reply)
	}

	if _, err := a.Chat(ctx, "u1", "Thanks"); err != nil {
		t.Fatal(err)
	}
	if p := m.lastPrompt(); !strings.Contains(p, "How do I stand out?") {
		t.Errorf("second prompt lacks history: %q", p)
	}

	hist, _ := a.History(ctx, "u1")
	if len(hist) != 4 || hist[0].Role != genai.RoleUser || hist[3].Role != genai.RoleAssistant {
		t.Errorf("History() = %+v, want 4 alternating messages", hist)
	}

	if err := a.ClearHistory(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if hist, _ := a.History(ctx, "u1"); len(hist) != 0 {
		t.Errorf("History() after clear = %d messages", len(hist))
	}
}

func TestMemoryHistory_Caps(t *testing.T) {
	h := genai.NewMemoryHistory()
	ctx := context.Background()
	for i := 0; i < 130; i++ {
		_ = h.Append(ctx, "u", genai.Message{Role: genai.RoleUser, Content: "m"})
	}
	got, _ := h.Recent(ctx, "u", 1000)
	if len(got) != 100 {
		t.Errorf("Recent() = %d messages, want 100", len(got))
	}
}

func TestKeywordScore(t *testing.T) {
	cases := []struct {
		text string
		kws  []string
		want int
	}{
		{"", []string{"go"}, 0},
		{"go", nil, 0},
		{"Go and SQL", []string{"go", "sql", "rust"}, 66},
		{"GO", []string{"go"}, 100},
	}
	for _, c := range cases {
		if got := genai.KeywordScore(c.text, c.kws); got != c.want {
			t.Errorf("KeywordScore(%q, %v) = %d, want %d", c.text, c.kws, got, c.want)
		}
	}
}
