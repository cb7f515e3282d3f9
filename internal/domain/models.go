// Package domain defines the entities shared by every service of the job board.
//
// JSON field names follow the wire format the web client already speaks
// (`_id`, `created_by`, camelCase elsewhere).
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by storage implementations.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ─── Roles ───────────────────────────────────────────────────────────────────

// Role is the closed set of account kinds.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

// ParseRole converts a raw string to a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleStudent, RoleRecruiter:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanManageJobs reports whether the role may post jobs, own companies and
// review applications.
func (r Role) CanManageJobs() bool {
	switch r {
	case RoleRecruiter:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// ─── Entities ────────────────────────────────────────────────────────────────

// User is an account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"_id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the self-service part of a User. The resume binary lives in the
// blob store; ResumeBlobID is only a reference.
type Profile struct {
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	ResumeBlobID       string   `json:"resume,omitempty"`
	ResumeOriginalName string   `json:"resumeOriginalName,omitempty"`
	ResumeMimeType     string   `json:"resumeMimeType,omitempty"`
	ProfilePhoto       string   `json:"profilePhoto"`
}

// HasResume reports whether a resume has been uploaded.
func (p Profile) HasResume() bool { return p.ResumeBlobID != "" }

// Company is owned by a recruiter and referenced by jobs.
type Company struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Job is a posting. CompanyID and CreatedBy are fixed at creation.
type Job struct {
	ID              string        `json:"_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Requirements    []string      `json:"requirements"`
	Salary          float64       `json:"salary"`
	Location        string        `json:"location"`
	JobType         string        `json:"jobType"`
	ExperienceLevel int           `json:"experienceLevel"`
	Position        int           `json:"position"`
	CompanyID       string        `json:"companyId"`
	Company         *Company      `json:"company,omitempty"`
	CreatedBy       string        `json:"created_by"`
	Applications    []Application `json:"applications,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Application joins an applicant and a job.
type Application struct {
	ID          string    `json:"_id"`
	JobID       string    `json:"jobId"`
	Job         *Job      `json:"job,omitempty"`
	ApplicantID string    `json:"applicantId"`
	Applicant   *User     `json:"applicant,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Blob is a content-addressed binary (resume, photo, logo).
type Blob struct {
	ID          string
	ContentType string
	Size        int64
	Data        []byte
	CreatedAt   time.Time
}

// Upload is a file received from a client before it is stored.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaPathPrefix is the public path under which image blobs are served.
const MediaPathPrefix = "/api/v1/media/"

// MediaURL returns the public path of an image blob.
func MediaURL(blobID string) string { return MediaPathPrefix + blobID }
