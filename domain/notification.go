package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the event that produced a notification.
type NotificationType string

const (
	NotificationLevelUp         NotificationType = "level_up"
	NotificationLevelDown       NotificationType = "level_down"
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationNewListing      NotificationType = "new_listing"
)

// DefaultNotificationCap bounds the per-user notification log.
const DefaultNotificationCap = 50

// Notification is a single entry in a user's notification log.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Icon      string           `json:"icon"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// NotificationLog is a bounded, newest-first list of notifications.
type NotificationLog struct {
	Items []Notification `json:"items"`
	Cap   int            `json:"-"`
}

func NewNotificationLog(items []Notification, capacity int) *NotificationLog {
	if capacity <= 0 {
		capacity = DefaultNotificationCap
	}
	log := &NotificationLog{Items: items, Cap: capacity}
	log.truncate()
	return log
}

// Append assigns id, timestamp and unread state, then prepends the entry.
func (l *NotificationLog) Append(n Notification, now time.Time) Notification {
	n.ID = uuid.NewString()
	n.Timestamp = now
	n.Read = false
	l.Items = append([]Notification{n}, l.Items...)
	l.truncate()
	return n
}

// MarkRead flags a single entry. It reports whether the id was found.
func (l *NotificationLog) MarkRead(id string) bool {
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items[i].Read = true
			return true
		}
	}
	return false
}

func (l *NotificationLog) MarkAllRead() {
	for i := range l.Items {
		l.Items[i].Read = true
	}
}

func (l *NotificationLog) Remove(id string) bool {
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *NotificationLog) Clear() {
	l.Items = nil
}

func (l *NotificationLog) Unread() int {
	count := 0
	for _, n := range l.Items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (l *NotificationLog) truncate() {
	if l.Cap > 0 && len(l.Items) > l.Cap {
		l.Items = l.Items[:l.Cap]
	}
}
