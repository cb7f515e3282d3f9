package postgres

import (
	"context"
	"fmt"
)

// schema is idempotent; Migrate runs it on every start.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                   TEXT PRIMARY KEY,
    fullname             TEXT NOT NULL,
    email                TEXT NOT NULL UNIQUE,
    phone_number         TEXT NOT NULL,
    password_hash        TEXT NOT NULL,
    role                 TEXT NOT NULL CHECK (role IN ('student', 'recruiter')),
    bio                  TEXT NOT NULL DEFAULT '',
    skills               TEXT[] NOT NULL DEFAULT '{}',
    resume_blob_id       TEXT NOT NULL DEFAULT '',
    resume_original_name TEXT NOT NULL DEFAULT '',
    resume_mime_type     TEXT NOT NULL DEFAULT '',
    profile_photo        TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS blobs (
    id           TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    size         BIGINT NOT NULL,
    data         BYTEA NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS companies (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    website     TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL DEFAULT '',
    logo        TEXT NOT NULL DEFAULT '',
    user_id     TEXT NOT NULL REFERENCES users(id),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    description      TEXT NOT NULL,
    requirements     TEXT[] NOT NULL DEFAULT '{}',
    salary           DOUBLE PRECISION NOT NULL,
    location         TEXT NOT NULL,
    job_type         TEXT NOT NULL,
    experience_level INTEGER NOT NULL,
    position         INTEGER NOT NULL,
    company_id       TEXT NOT NULL REFERENCES companies(id),
    created_by       TEXT NOT NULL REFERENCES users(id),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS jobs_created_by_idx ON jobs (created_by, created_at DESC);

CREATE TABLE IF NOT EXISTS applications (
    id           TEXT PRIMARY KEY,
    job_id       TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    applicant_id TEXT NOT NULL REFERENCES users(id),
    status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (job_id, applicant_id)
);
CREATE INDEX IF NOT EXISTS applications_applicant_idx ON applications (applicant_id, created_at DESC);

CREATE TABLE IF NOT EXISTS saved_jobs (
    user_id    TEXT NOT NULL REFERENCES users(id),
    job_id     TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, job_id)
);
`

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
