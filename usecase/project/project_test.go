package project

import (
	"context"
	"testing"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/testutil"
	"github.com/fastygo/droptracker/repository"
)

type broadcastStub struct {
	sent []domain.Notification
}

func (b *broadcastStub) Broadcast(_ context.Context, n domain.Notification) (int, error) {
	b.sent = append(b.sent, n)
	return 1, nil
}

var admin = domain.Actor{UserID: "root", Role: domain.RoleAdmin}

func TestCreateProjectRequiresAdmin(t *testing.T) {
	uc := New(testutil.NewProjectRepo(), nil, nil)
	_, err := uc.CreateProject(context.Background(), domain.Actor{UserID: "u1", Role: domain.RoleUser}, &domain.Project{Name: "x", URL: "x.io"})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateProjectBroadcastsListing(t *testing.T) {
	repo := testutil.NewProjectRepo()
	b := &broadcastStub{}
	uc := New(repo, b, nil)

	created, err := uc.CreateProject(context.Background(), admin, &domain.Project{Name: " Layer Zero ", URL: "layerzero.network"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if created.Status != domain.ProjectActive || created.CreatedBy != "root" || created.URL != "https://layerzero.network" {
		t.Fatalf("unexpected project %+v", created)
	}
	if len(b.sent) != 1 || b.sent[0].Type != domain.NotificationNewListing || b.sent[0].Message != "Layer Zero is now in the Explorer." {
		t.Fatalf("unexpected broadcast %+v", b.sent)
	}
}

func TestUpdateAndDeleteProject(t *testing.T) {
	repo := testutil.NewProjectRepo(domain.Project{ID: "p1", Name: "Old", URL: "https://old.io", Status: domain.ProjectActive})
	uc := New(repo, nil, nil)
	ctx := context.Background()

	if _, err := uc.UpdateProject(ctx, admin, &domain.Project{ID: "p1", Name: "New", URL: "new.io", Status: domain.ProjectEnded}); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	listed, _ := uc.ListProjects(ctx, repository.ProjectFilter{Status: string(domain.ProjectEnded)})
	if len(listed) != 1 || listed[0].Name != "New" {
		t.Fatalf("unexpected listing %+v", listed)
	}
	if _, err := uc.UpdateProject(ctx, admin, &domain.Project{ID: "p1", Name: "x", URL: "x.io", Status: "paused"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	if err := uc.DeleteProject(ctx, admin, "p1"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := uc.GetProject(ctx, "p1"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
