// Package postgres implements every store port on PostgreSQL via pgx.
//
// Uniqueness (emails, company names, one application per job and applicant,
// one bookmark per job and user) is enforced by the schema; violations come
// back as domain.ErrDuplicate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobportal/board-service/internal/domain"
)

const uniqueViolation = "23505"

// Store is a pgxpool-backed store.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// mapErr converts driver errors to domain sentinels.
func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ─── Users ───────────────────────────────────────────────────────────────────

const userColumns = `u.id, u.fullname, u.email, u.phone_number, u.password_hash, u.role,
	u.bio, u.skills, u.resume_blob_id, u.resume_original_name, u.resume_mime_type,
	u.profile_photo, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Fullname, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Role,
		&u.Profile.Bio, &u.Profile.Skills, &u.Profile.ResumeBlobID,
		&u.Profile.ResumeOriginalName, &u.Profile.ResumeMimeType,
		&u.Profile.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, fullname, email, phone_number, password_hash, role,
		                    bio, skills, profile_photo, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Fullname, u.Email, u.PhoneNumber, u.PasswordHash, string(u.Role),
		u.Profile.Bio, nonNil(u.Profile.Skills), u.Profile.ProfilePhoto, u.CreatedAt, u.UpdatedAt,
	)
	return mapErr(err, "insert user")
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
	return u, mapErr(err, "select user by email")
}

func (s *Store) UserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	return u, mapErr(err, "select user")
}

func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET fullname = $2, email = $3, phone_number = $4, bio = $5, skills = $6,
		     resume_blob_id = $7, resume_original_name = $8, resume_mime_type = $9,
		     profile_photo = $10, updated_at = $11
		 WHERE id = $1`,
		u.ID, u.Fullname, u.Email, u.PhoneNumber, u.Profile.Bio, nonNil(u.Profile.Skills),
		u.Profile.ResumeBlobID, u.Profile.ResumeOriginalName, u.Profile.ResumeMimeType,
		u.Profile.ProfilePhoto, u.UpdatedAt,
	)
	if err != nil {
		return mapErr(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ─── Companies ───────────────────────────────────────────────────────────────

const companyColumns = `c.id, c.name, c.description, c.website, c.location, c.logo,
	c.user_id, c.created_at, c.updated_at`

func companyDest(c *domain.Company) []any {
	return []any{&c.ID, &c.Name, &c.Description, &c.Website, &c.Location, &c.Logo,
		&c.UserID, &c.CreatedAt, &c.UpdatedAt}
}

func (s *Store) CreateCompany(ctx context.Context, c *domain.Company) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, description, website, location, logo, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Description, c.Website, c.Location, c.Logo, c.UserID, c.CreatedAt, c.UpdatedAt,
	)
	return mapErr(err, "insert company")
}

func (s *Store) UpdateCompany(ctx context.Context, c *domain.Company) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies
		 SET name = $2, description = $3, website = $4, location = $5, logo = $6, updated_at = $7
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Website, c.Location, c.Logo, c.UpdatedAt,
	)
	if err != nil {
		return mapErr(err, "update company")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) CompanyByID(ctx context.Context, id string) (*domain.Company, error) {
	var c domain.Company
	err := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies c WHERE c.id = $1`, id,
	).Scan(companyDest(&c)...)
	if err != nil {
		return nil, mapErr(err, "select company")
	}
	return &c, nil
}

func (s *Store) CompaniesByOwner(ctx context.Context, userID string) ([]domain.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies c WHERE c.user_id = $1 ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, mapErr(err, "select companies")
	}
	defer rows.Close()

	out := make([]domain.Company, 0)
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(companyDest(&c)...); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

// jobSelect joins the owning company so every job comes back expanded.
const jobSelect = `SELECT j.id, j.title, j.description, j.requirements, j.salary, j.location,
	j.job_type, j.experience_level, j.position, j.company_id, j.created_by, j.created_at,
	` + companyColumns + `
	FROM jobs j JOIN companies c ON c.id = j.company_id`

func jobDest(j *domain.Job, c *domain.Company) []any {
	return append([]any{&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Salary, &j.Location,
		&j.JobType, &j.ExperienceLevel, &j.Position, &j.CompanyID, &j.CreatedBy, &j.CreatedAt},
		companyDest(c)...)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		j domain.Job
		c domain.Company
	)
	if err := row.Scan(jobDest(&j, &c)...); err != nil {
		return nil, err
	}
	j.Company = &c
	return &j, nil
}

func (s *Store) queryJobs(ctx context.Context, op, sql string, args ...any) ([]domain.Job, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err, op)
	}
	defer rows.Close()

	out := make([]domain.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (s *Store) CreateJob(ctx context.Context, j *domain.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, description, requirements, salary, location, job_type,
		                   experience_level, position, company_id, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		j.ID, j.Title, j.Description, nonNil(j.Requirements), j.Salary, j.Location, j.JobType,
		j.ExperienceLevel, j.Position, j.CompanyID, j.CreatedBy, j.CreatedAt,
	)
	return mapErr(err, "insert job")
}

func (s *Store) JobByID(ctx context.Context, id string) (*domain.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "select job")
	}
	return j, nil
}

// SearchJobs matches keyword as a literal, case-insensitive substring of the
// title or description.
func (s *Store) SearchJobs(ctx context.Context, keyword string) ([]domain.Job, error) {
	if keyword == "" {
		return s.queryJobs(ctx, "search jobs", jobSelect+` ORDER BY j.created_at DESC`)
	}
	pattern := "%" + escapeLike(keyword) + "%"
	return s.queryJobs(ctx, "search jobs",
		jobSelect+` WHERE j.title ILIKE $1 OR j.description ILIKE $1 ORDER BY j.created_at DESC`, pattern)
}

func (s *Store) JobsByCreator(ctx context.Context, userID string) ([]domain.Job, error) {
	return s.queryJobs(ctx, "select jobs by creator",
		jobSelect+` WHERE j.created_by = $1 ORDER BY j.created_at DESC`, userID)
}

// ─── Applications ────────────────────────────────────────────────────────────

const appColumns = `a.id, a.job_id, a.applicant_id, a.status, a.created_at, a.updated_at`

func appDest(a *domain.Application) []any {
	return []any{&a.ID, &a.JobID, &a.ApplicantID, &a.Status, &a.CreatedAt, &a.UpdatedAt}
}

// CreateApplication inserts atomically; a concurrent duplicate loses with
// domain.ErrDuplicate.
func (s *Store) CreateApplication(ctx context.Context, a *domain.Application) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO applications (id, job_id, applicant_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (job_id, applicant_id) DO NOTHING`,
		a.ID, a.JobID, a.ApplicantID, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapErr(err, "insert application")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (s *Store) FindApplication(ctx context.Context, jobID, applicantID string) (*domain.Application, error) {
	var a domain.Application
	err := s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM applications a WHERE a.job_id = $1 AND a.applicant_id = $2`,
		jobID, applicantID,
	).Scan(appDest(&a)...)
	if err != nil {
		return nil, mapErr(err, "select application")
	}
	return &a, nil
}

func (s *Store) ApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	var a domain.Application
	err := s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM applications a WHERE a.id = $1`, id,
	).Scan(appDest(&a)...)
	if err != nil {
		return nil, mapErr(err, "select application")
	}
	return &a, nil
}

// ApplicationsByJob returns the job's applications with applicants attached,
// newest first.
func (s *Store) ApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appColumns+`, `+userColumns+`
		 FROM applications a JOIN users u ON u.id = a.applicant_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC`, jobID)
	if err != nil {
		return nil, mapErr(err, "select applications by job")
	}
	defer rows.Close()

	out := make([]domain.Application, 0)
	for rows.Next() {
		var (
			a domain.Application
			u domain.User
		)
		dest := append(appDest(&a),
			&u.ID, &u.Fullname, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Role,
			&u.Profile.Bio, &u.Profile.Skills, &u.Profile.ResumeBlobID,
			&u.Profile.ResumeOriginalName, &u.Profile.ResumeMimeType,
			&u.Profile.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		u.PasswordHash = ""
		a.Applicant = &u
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApplicationsByApplicant returns the applicant's applications with job and
// company attached, newest first.
func (s *Store) ApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appColumns+`,
		        j.id, j.title, j.description, j.requirements, j.salary, j.location,
		        j.job_type, j.experience_level, j.position, j.company_id, j.created_by, j.created_at,
		        `+companyColumns+`
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE a.applicant_id = $1
		 ORDER BY a.created_at DESC`, applicantID)
	if err != nil {
		return nil, mapErr(err, "select applications by applicant")
	}
	defer rows.Close()

	out := make([]domain.Application, 0)
	for rows.Next() {
		var (
			a domain.Application
			j domain.Job
			c domain.Company
		)
		if err := rows.Scan(append(appDest(&a), jobDest(&j, &c)...)...); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		j.Company = &c
		a.Job = &j
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateApplicationStatus moves id from → to only while the row is still at
// from.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (*domain.Application, error) {
	var a domain.Application
	err := s.pool.QueryRow(ctx,
		`UPDATE applications a
		 SET status = $3, updated_at = $4
		 WHERE a.id = $1 AND a.status = $2
		 RETURNING `+appColumns,
		id, string(from), string(to), at,
	).Scan(appDest(&a)...)
	if err != nil {
		return nil, mapErr(err, "update application status")
	}
	return &a, nil
}

// ─── Saved jobs ──────────────────────────────────────────────────────────────

func (s *Store) AddSavedJob(ctx context.Context, userID, jobID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO saved_jobs (user_id, job_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID, jobID, at,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return mapErr(err, "insert saved job")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (s *Store) RemoveSavedJob(ctx context.Context, userID, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	return mapErr(err, "delete saved job")
}

func (s *Store) SavedJobs(ctx context.Context, userID string) ([]domain.Job, error) {
	return s.queryJobs(ctx, "select saved jobs",
		jobSelect+` JOIN saved_jobs sj ON sj.job_id = j.id
		 WHERE sj.user_id = $1
		 ORDER BY sj.created_at DESC`, userID)
}

// ─── Blobs ───────────────────────────────────────────────────────────────────

// PutBlob keeps already stored content and only refreshes its created_at, so
// blob GC measures age from the latest upload.
func (s *Store) PutBlob(ctx context.Context, b *domain.Blob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blobs (id, content_type, size, data, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET created_at = EXCLUDED.created_at`,
		b.ID, b.ContentType, b.Size, b.Data, b.CreatedAt,
	)
	return mapErr(err, "insert blob")
}

func (s *Store) Blob(ctx context.Context, id string) (*domain.Blob, error) {
	var b domain.Blob
	err := s.pool.QueryRow(ctx,
		`SELECT id, content_type, size, data, created_at FROM blobs WHERE id = $1`, id,
	).Scan(&b.ID, &b.ContentType, &b.Size, &b.Data, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "select blob")
	}
	return &b, nil
}

// DeleteUnreferencedBlobs removes blobs older than cutoff that no resume,
// profile photo or company logo points at.
func (s *Store) DeleteUnreferencedBlobs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM blobs b
		 WHERE b.created_at < $1
		   AND NOT EXISTS (SELECT 1 FROM users u
		                   WHERE u.resume_blob_id = b.id OR u.profile_photo = $2 || b.id)
		   AND NOT EXISTS (SELECT 1 FROM companies c WHERE c.logo = $2 || b.id)`,
		cutoff, domain.MediaPathPrefix,
	)
	if err != nil {
		return 0, mapErr(err, "delete blobs")
	}
	return tag.RowsAffected(), nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
