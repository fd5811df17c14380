package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Emiliocodings/ServiceUsers/internal/store"
	"github.com/Emiliocodings/ServiceUsers/internal/store/storetest"
	"github.com/Emiliocodings/ServiceUsers/types"
)

func TestUserServiceCreate(t *testing.T) {
	repo := storetest.NewUserRepository()
	svc := NewUserService(repo)

	user, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 || user.CreatedAt.IsZero() || user.UpdatedAt != nil {
		t.Fatalf("unexpected created user: %+v", user)
	}
	if !user.Active {
		t.Fatalf("expected active to default to true")
	}
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := storetest.NewUserRepository()
	svc := NewUserService(repo)

	if _, err := svc.Create(context.Background(), validCreate()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := validCreate()
	dup.Username = "anotheruser"
	if _, err := svc.Create(context.Background(), dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected one stored user, got %d", repo.Len())
	}
}

func TestUserServiceCreateInvalidDoesNotPersist(t *testing.T) {
	repo := storetest.NewUserRepository()
	svc := NewUserService(repo)

	in := validCreate()
	in.Role = "invalid_role"
	_, err := svc.Create(context.Background(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("expected no stored users, got %d", repo.Len())
	}
}

func TestUserServiceCreateLookupFailure(t *testing.T) {
	repo := storetest.NewUserRepository()
	boom := errors.New("db down")
	repo.Err = boom
	svc := NewUserService(repo)

	if _, err := svc.Create(context.Background(), validCreate()); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}
}

func TestUserServiceUpdate(t *testing.T) {
	repo := storetest.NewUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, types.UserPatch{FirstName: strPtr("Updated")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "Updated" || updated.Username != created.Username || updated.LastName != created.LastName {
		t.Fatalf("unexpected updated user: %+v", updated)
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("expected updated_at to be set")
	}

	if _, err := svc.Update(ctx, created.ID, types.UserPatch{Username: strPtr("ab")}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := svc.Update(ctx, 999, types.UserPatch{FirstName: strPtr("Updated")}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserServiceDelete(t *testing.T) {
	repo := storetest.NewUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

type recordedEvent struct {
	channel string
	event   types.UserEvent
	attrs   map[string]string
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, channel string, v any, attrs map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, recordedEvent{channel: channel, event: v.(types.UserEvent), attrs: attrs})
	return "id", nil
}

func TestUserServicePublishesEvents(t *testing.T) {
	repo := storetest.NewUserRepository()
	pub := &fakePublisher{}
	svc := NewUserService(repo, WithEvents(pub, "users.events", slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, types.UserPatch{Role: strPtr(types.RoleAdmin)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	wantTypes := []string{types.EventUserCreated, types.EventUserUpdated, types.EventUserDeleted}
	if len(pub.events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(pub.events))
	}
	for i, want := range wantTypes {
		got := pub.events[i]
		if got.event.Type != want || got.attrs["type"] != want || got.channel != "users.events" {
			t.Fatalf("event %d: unexpected %+v", i, got)
		}
		if got.event.UserID != created.ID || got.event.OccurredAt.IsZero() {
			t.Fatalf("event %d: unexpected payload %+v", i, got.event)
		}
	}
	if pub.events[1].event.User == nil || pub.events[1].event.User.Role != types.RoleAdmin {
		t.Fatalf("expected updated user in event, got %+v", pub.events[1].event.User)
	}
	if pub.events[2].event.User != nil {
		t.Fatalf("expected no user in delete event")
	}
}

func TestUserServicePublishFailureDoesNotFailRequest(t *testing.T) {
	repo := storetest.NewUserRepository()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewUserService(repo, WithEvents(pub, "users.events", slog.New(slog.NewTextHandler(io.Discard, nil))))

	if _, err := svc.Create(context.Background(), validCreate()); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected stored user, got %d", repo.Len())
	}
}

func TestUserServiceNoEventsOnRejectedCreate(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewUserService(storetest.NewUserRepository(), WithEvents(pub, "users.events", nil))

	in := validCreate()
	in.Email = "bad"
	if _, err := svc.Create(context.Background(), in); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}
