// Package memory is an in-process implementation of every store port. It
// enforces the same uniqueness rules as the Postgres schema and is used by
// tests and by STORE_BACKEND=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"jobportal/board-service/internal/domain"
)

type jobRow struct {
	job domain.Job
	seq int64
}

type appRow struct {
	app domain.Application
	seq int64
}

type savedRow struct {
	userID, jobID string
	at            time.Time
	seq           int64
}

// Store holds every entity in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	seq       int64
	users     map[string]domain.User
	emails    map[string]string // email → user id
	companies map[string]domain.Company
	names     map[string]string // company name → id
	jobs      map[string]jobRow
	apps      map[string]appRow
	pairs     map[[2]string]string // (job, applicant) → application id
	saved     map[[2]string]savedRow
	blobs     map[string]domain.Blob
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		emails:    make(map[string]string),
		companies: make(map[string]domain.Company),
		names:     make(map[string]string),
		jobs:      make(map[string]jobRow),
		apps:      make(map[string]appRow),
		pairs:     make(map[[2]string]string),
		saved:     make(map[[2]string]savedRow),
		blobs:     make(map[string]domain.Blob),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return domain.ErrDuplicate
	}
	s.users[u.ID] = copyUser(*u)
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := copyUser(s.users[id])
	return &u, nil
}

func (s *Store) UserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

// UpdateUser replaces the stored row. Changing the email to one held by
// another account returns domain.ErrDuplicate.
func (s *Store) UpdateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if owner, taken := s.emails[u.Email]; taken && owner != u.ID {
		return domain.ErrDuplicate
	}
	delete(s.emails, old.Email)
	s.emails[u.Email] = u.ID
	s.users[u.ID] = copyUser(*u)
	return nil
}

// ─── Companies ───────────────────────────────────────────────────────────────

func (s *Store) CreateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[c.Name]; ok {
		return domain.ErrDuplicate
	}
	s.companies[c.ID] = *c
	s.names[c.Name] = c.ID
	return nil
}

func (s *Store) CompanyByID(_ context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CompaniesByOwner(_ context.Context, userID string) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Company, 0)
	for _, c := range s.companies {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.companies[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if owner, taken := s.names[c.Name]; taken && owner != c.ID {
		return domain.ErrDuplicate
	}
	delete(s.names, old.Name)
	s.names[c.Name] = c.ID
	s.companies[c.ID] = *c
	return nil
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Store) CreateJob(_ context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[j.CompanyID]; !ok {
		return domain.ErrNotFound
	}
	stored := *j
	stored.Company = nil
	stored.Applications = nil
	stored.Requirements = slices.Clone(j.Requirements)
	s.jobs[j.ID] = jobRow{job: stored, seq: s.next()}
	return nil
}

func (s *Store) JobByID(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	j := s.expandJob(row.job)
	return &j, nil
}

// SearchJobs matches keyword case-insensitively against title or
// description. Results are newest first.
func (s *Store) SearchJobs(_ context.Context, keyword string) ([]domain.Job, error) {
	kw := strings.ToLower(keyword)
	return s.filterJobs(func(j domain.Job) bool {
		return kw == "" ||
			strings.Contains(strings.ToLower(j.Title), kw) ||
			strings.Contains(strings.ToLower(j.Description), kw)
	}), nil
}

func (s *Store) JobsByCreator(_ context.Context, userID string) ([]domain.Job, error) {
	return s.filterJobs(func(j domain.Job) bool { return j.CreatedBy == userID }), nil
}

func (s *Store) filterJobs(keep func(domain.Job) bool) []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]jobRow, 0)
	for _, r := range s.jobs {
		if keep(r.job) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, k int) bool { return newer(rows[i].job.CreatedAt, rows[i].seq, rows[k].job.CreatedAt, rows[k].seq) })
	out := make([]domain.Job, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.expandJob(r.job))
	}
	return out
}

// expandJob returns a copy of j with its company attached. Caller holds mu.
func (s *Store) expandJob(j domain.Job) domain.Job {
	j.Requirements = slices.Clone(j.Requirements)
	if c, ok := s.companies[j.CompanyID]; ok {
		j.Company = &c
	}
	return j
}

// ─── Applications ────────────────────────────────────────────────────────────

func (s *Store) CreateApplication(_ context.Context, a *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{a.JobID, a.ApplicantID}
	if _, ok := s.pairs[key]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := s.jobs[a.JobID]; !ok {
		return domain.ErrNotFound
	}
	stored := *a
	stored.Job, stored.Applicant = nil, nil
	s.apps[a.ID] = appRow{app: stored, seq: s.next()}
	s.pairs[key] = a.ID
	return nil
}

func (s *Store) FindApplication(_ context.Context, jobID, applicantID string) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pairs[[2]string{jobID, applicantID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a := s.apps[id].app
	return &a, nil
}

func (s *Store) ApplicationByID(_ context.Context, id string) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a := row.app
	return &a, nil
}

// ApplicationsByJob returns the job's applications, newest first, each with
// the applicant attached.
func (s *Store) ApplicationsByJob(_ context.Context, jobID string) ([]domain.Application, error) {
	return s.filterApps(func(a domain.Application) bool { return a.JobID == jobID }, func(a *domain.Application) {
		if u, ok := s.users[a.ApplicantID]; ok {
			u = copyUser(u)
			u.PasswordHash = ""
			a.Applicant = &u
		}
	}), nil
}

// ApplicationsByApplicant returns the applicant's applications, newest
// first, each with its job and company attached when the job still exists.
func (s *Store) ApplicationsByApplicant(_ context.Context, applicantID string) ([]domain.Application, error) {
	return s.filterApps(func(a domain.Application) bool { return a.ApplicantID == applicantID }, func(a *domain.Application) {
		if row, ok := s.jobs[a.JobID]; ok {
			j := s.expandJob(row.job)
			a.Job = &j
		}
	}), nil
}

func (s *Store) filterApps(keep func(domain.Application) bool, expand func(*domain.Application)) []domain.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]appRow, 0)
	for _, r := range s.apps {
		if keep(r.app) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, k int) bool { return newer(rows[i].app.CreatedAt, rows[i].seq, rows[k].app.CreatedAt, rows[k].seq) })
	out := make([]domain.Application, 0, len(rows))
	for _, r := range rows {
		a := r.app
		expand(&a)
		out = append(out, a)
	}
	return out
}

// UpdateApplicationStatus is a compare-and-set on the status column.
func (s *Store) UpdateApplicationStatus(_ context.Context, id string, from, to domain.Status, at time.Time) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.apps[id]
	if !ok || row.app.Status != from {
		return nil, domain.ErrNotFound
	}
	row.app.Status = to
	row.app.UpdatedAt = at
	s.apps[id] = row
	a := row.app
	return &a, nil
}

// ─── Saved jobs ──────────────────────────────────────────────────────────────

func (s *Store) AddSavedJob(_ context.Context, userID, jobID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{userID, jobID}
	if _, ok := s.saved[key]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := s.jobs[jobID]; !ok {
		return domain.ErrNotFound
	}
	s.saved[key] = savedRow{userID: userID, jobID: jobID, at: at, seq: s.next()}
	return nil
}

func (s *Store) RemoveSavedJob(_ context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, [2]string{userID, jobID})
	return nil
}

// SavedJobs returns the user's saved jobs, most recently saved first. Saved
// entries whose job no longer exists are skipped.
func (s *Store) SavedJobs(_ context.Context, userID string) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]savedRow, 0)
	for _, r := range s.saved {
		if r.userID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, k int) bool { return newer(rows[i].at, rows[i].seq, rows[k].at, rows[k].seq) })
	out := make([]domain.Job, 0, len(rows))
	for _, r := range rows {
		if row, ok := s.jobs[r.jobID]; ok {
			out = append(out, s.expandJob(row.job))
		}
	}
	return out, nil
}

// ─── Blobs ───────────────────────────────────────────────────────────────────

// PutBlob stores b. An existing id keeps its bytes and takes b.CreatedAt.
func (s *Store) PutBlob(_ context.Context, b *domain.Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.blobs[b.ID]; ok {
		existing.CreatedAt = b.CreatedAt
		s.blobs[b.ID] = existing
		return nil
	}
	stored := *b
	stored.Data = slices.Clone(b.Data)
	s.blobs[b.ID] = stored
	return nil
}

func (s *Store) Blob(_ context.Context, id string) (*domain.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

// DeleteUnreferencedBlobs removes blobs created before cutoff that no user
// or company points at.
func (s *Store) DeleteUnreferencedBlobs(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[string]bool)
	for _, u := range s.users {
		live[u.Profile.ResumeBlobID] = true
		live[strings.TrimPrefix(u.Profile.ProfilePhoto, domain.MediaPathPrefix)] = true
	}
	for _, c := range s.companies {
		live[strings.TrimPrefix(c.Logo, domain.MediaPathPrefix)] = true
	}

	var n int64
	for id, b := range s.blobs {
		if !live[id] && b.CreatedAt.Before(cutoff) {
			delete(s.blobs, id)
			n++
		}
	}
	return n, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func copyUser(u domain.User) domain.User {
	u.Profile.Skills = slices.Clone(u.Profile.Skills)
	return u
}

// newer orders by time descending, then insertion order descending.
func newer(a time.Time, aSeq int64, b time.Time, bSeq int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aSeq > bSeq
}
