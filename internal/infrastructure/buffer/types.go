package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityProfile = "profile"
	EntityTask    = "task"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Lower values drain first.
const (
	PriorityTask    = 2
	PriorityProfile = 3
	priorityDefault = 3
	priorityMax     = 5
)

// Item is a write that failed against primary storage and waits to be replayed.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > priorityMax {
		i.Priority = priorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
