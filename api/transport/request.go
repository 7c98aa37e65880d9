package transport

type ProfileUpdateRequest struct {
	Email string            `json:"email" validate:"omitempty,email,max=254"`
	Meta  map[string]string `json:"metadata" validate:"omitempty,max=32"`
}

type TaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	URL         string `json:"url" validate:"required,max=2048"`
	Intensity   string `json:"intensity" validate:"omitempty,oneof=high medium low"`
	TimerType   string `json:"timer_type" validate:"required,oneof=8h 12h 24h custom"`
	CustomHours int    `json:"custom_hours" validate:"required_if=TimerType custom,omitempty,min=1,max=72"`
}

type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	URL         string `json:"url" validate:"required,max=2048"`
	Category    string `json:"category" validate:"max=64"`
	Status      string `json:"status" validate:"omitempty,oneof=upcoming active ended"`
	Featured    bool   `json:"featured"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Token   string `json:"recaptcha_token"`
}

type AuthLoginRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	TTL   int    `json:"ttl_seconds" validate:"gte=0"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TTL       int    `json:"ttl_seconds" validate:"gte=0"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
