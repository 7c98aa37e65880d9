package admin

import (
	"context"
	"testing"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/testutil"
)

func TestStatsRequiresAdmin(t *testing.T) {
	uc := New(&testutil.StatsRepo{Stats: domain.Stats{Users: 3, Tasks: 9}})

	if _, err := uc.Stats(context.Background(), domain.Actor{UserID: "u1", Role: domain.RoleUser}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	stats, err := uc.Stats(context.Background(), domain.Actor{UserID: "root", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Users != 3 || stats.Tasks != 9 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
