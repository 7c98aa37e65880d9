package domain

import "time"

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	RemoteIP  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats are the aggregate counters shown on the admin dashboard.
type Stats struct {
	Users           int       `json:"users"`
	Tasks           int       `json:"tasks"`
	ActiveTasks     int       `json:"active_tasks"`
	Projects        int       `json:"projects"`
	ContactMessages int       `json:"contact_messages"`
	GeneratedAt     time.Time `json:"generated_at"`
}
