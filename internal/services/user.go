package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Emiliocodings/ServiceUsers/internal/store"
	"github.com/Emiliocodings/ServiceUsers/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.User, error)
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int64, patch types.UserPatch) (types.User, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher delivers user change notifications to a broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, channel string, v any, attrs map[string]string) (string, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo      UserRepository
	validator *Validator
	events    EventPublisher
	channel   string
	logger    *slog.Logger
	now       func() time.Time
}

type UserServiceOption func(*UserService)

// WithEvents publishes a UserEvent to channel after every committed change.
// Publish failures are logged and never fail the request.
func WithEvents(pub EventPublisher, channel string, logger *slog.Logger) UserServiceOption {
	return func(s *UserService) {
		s.events = pub
		s.channel = channel
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewUserService(repo UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:      repo,
		validator: NewValidator(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *UserService) Get(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the payload and inserts a new user. A registered email
// yields store.ErrConflict, either from the lookup or from the unique
// constraint when two creates race.
func (s *UserService) Create(ctx context.Context, in types.UserCreate) (types.User, error) {
	if err := s.validator.ValidateCreate(in); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return types.User{}, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, in.User())
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, types.EventUserCreated, user.ID, &user)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch types.UserPatch) (types.User, error) {
	if err := s.validator.ValidatePatch(patch); err != nil {
		return types.User{}, err
	}
	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, types.EventUserUpdated, user.ID, &user)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, types.EventUserDeleted, id, nil)
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType string, id int64, user *types.User) {
	if s.events == nil {
		return
	}
	event := types.UserEvent{
		Type:       eventType,
		UserID:     id,
		User:       user,
		OccurredAt: s.now().UTC(),
	}
	attrs := map[string]string{"type": eventType}
	if _, err := s.events.PublishJSON(ctx, s.channel, event, attrs); err != nil {
		s.logger.Warn("failed to publish user event",
			"type", eventType,
			"user_id", id,
			"error", err,
		)
	}
}
