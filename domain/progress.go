package domain

import (
	"fmt"
	"time"
)

// Progress is the gamification record of one user.
type Progress struct {
	UserID         string    `json:"user_id"`
	CompletedCount int       `json:"completed_count"`
	NotifiedTier   int       `json:"notified_tier"`
	Streak         Streak    `json:"streak"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgressView is the read model returned to clients.
type ProgressView struct {
	Level  Level  `json:"level"`
	Streak Streak `json:"streak"`
}

func (p *Progress) View() ProgressView {
	return ProgressView{Level: LevelFor(p.CompletedCount), Streak: p.Streak}
}

// TierNotification builds the log entry announcing a tier change.
func TierNotification(change TierChange) Notification {
	if change.Up() {
		return Notification{
			Type:    NotificationLevelUp,
			Title:   "Level up!",
			Message: fmt.Sprintf("You advanced from %s %s to %s %s.", change.Previous.Icon, change.Previous.Name, change.Current.Icon, change.Current.Name),
			Icon:    change.Current.Icon,
		}
	}
	return Notification{
		Type:    NotificationLevelDown,
		Title:   "Level changed",
		Message: fmt.Sprintf("You moved from %s %s back to %s %s.", change.Previous.Icon, change.Previous.Name, change.Current.Icon, change.Current.Name),
		Icon:    change.Current.Icon,
	}
}

func StreakNotification(days int) Notification {
	return Notification{
		Type:    NotificationStreakMilestone,
		Title:   fmt.Sprintf("%d-day streak!", days),
		Message: fmt.Sprintf("You have logged in %d days in a row.", days),
		Icon:    "🔥",
	}
}

func ListingNotification(project *Project) Notification {
	return Notification{
		Type:    NotificationNewListing,
		Title:   "New project listed",
		Message: fmt.Sprintf("%s is now in the Explorer.", project.Name),
		Icon:    "🆕",
	}
}
