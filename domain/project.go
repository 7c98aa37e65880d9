package domain

import (
	"strings"
	"time"
)

// ProjectStatus describes where a listed project is in its airdrop lifecycle.
type ProjectStatus string

const (
	ProjectUpcoming ProjectStatus = "upcoming"
	ProjectActive   ProjectStatus = "active"
	ProjectEnded    ProjectStatus = "ended"
)

// Project is an admin-curated Explorer listing.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url"`
	Category    string        `json:"category,omitempty"`
	Status      ProjectStatus `json:"status"`
	Featured    bool          `json:"featured"`
	CreatedBy   string        `json:"created_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p == nil {
		return ErrInvalidPayload
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return NewError(ErrCodeInvalid, "name is required")
	}
	normalized, err := NormalizeURL(p.URL)
	if err != nil {
		return err
	}
	p.URL = normalized
	switch p.Status {
	case "":
		p.Status = ProjectActive
	case ProjectUpcoming, ProjectActive, ProjectEnded:
	default:
		return NewError(ErrCodeInvalid, "unknown project status")
	}
	return nil
}
