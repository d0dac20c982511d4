package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-user-app/internal/core/session"
	"go-user-app/internal/domain"
	"go-user-app/pkg/utils"
)

// UserService is the composition root the HTTP layer talks to: login/logout,
// registration, edits, soft deletes and the read accessors behind the admin
// listing.
type UserService struct {
	users    domain.UserRepository
	logs     domain.LoginLogRepository
	auth     *Authenticator
	sessions *session.Manager
	log      *zap.Logger
}

func NewUserService(users domain.UserRepository, logs domain.LoginLogRepository, sessions *session.Manager, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		users:    users,
		logs:     logs,
		auth:     NewAuthenticator(users),
		sessions: sessions,
		log:      log,
	}
}

func (s *UserService) Sessions() *session.Manager { return s.sessions }

type RegisterInput struct {
	Login     string
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

// UpdatePatch carries only the fields the caller wants to change.
type UpdatePatch struct {
	Login     *string
	Firstname *string
	Lastname  *string
	Email     *string
	Password  *string
}

// Login authenticates, starts a session and records the attempt. The returned
// token is the opaque session id the transport puts in the cookie.
func (s *UserService) Login(ctx context.Context, login, password string, remember bool, ip string) (string, error) {
	u, err := s.auth.Authenticate(ctx, login, password)
	if err != nil {
		s.log.Info("login rejected", zap.String("login", login), zap.String("ip", ip), zap.Error(err))
		return "", err
	}
	token, err := s.sessions.Start(ctx, u.ID, remember)
	if err != nil {
		return "", err
	}
	if err := s.logs.Append(ctx, u.ID, ip); err != nil {
		_ = s.sessions.End(ctx, token)
		return "", err
	}
	s.log.Info("login ok", zap.String("user_id", u.ID), zap.String("ip", ip), zap.Bool("remember", remember))
	return token, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

func (s *UserService) IsAuthenticated(ctx context.Context, token string) bool {
	_, ok, _ := s.sessions.Resolve(ctx, token)
	return ok
}

func (s *UserService) CurrentUserID(ctx context.Context, token string) (string, bool) {
	id, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return "", false
	}
	return id, ok
}

// Register validates the password policy, checks login/email availability and
// inserts the new account. The store's unique indexes are the final arbiter:
// a concurrent duplicate slipping past the pre-checks still comes back as the
// matching taken error.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if !utils.ValidPassword(in.Password) {
		return "", ErrWeakPassword
	}
	if taken, err := s.users.IsLoginTaken(ctx, in.Login, ""); err != nil {
		return "", err
	} else if taken {
		return "", ErrLoginTaken
	}
	if taken, err := s.users.IsEmailTaken(ctx, in.Email, ""); err != nil {
		return "", err
	} else if taken {
		return "", ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Login:        in.Login,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return "", mapStoreErr(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("login", u.Login))
	return u.ID, nil
}

// Update writes only fields that actually differ from the stored row. An
// unchanged password is never re-hashed; an empty diff reports ErrNoChanges
// without touching the store.
func (s *UserService) Update(ctx context.Context, id string, p UpdatePatch) error {
	cur, err := s.users.FindActiveByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}

	fields := map[string]any{}
	if p.Login != nil && *p.Login != cur.Login {
		taken, err := s.users.IsLoginTaken(ctx, *p.Login, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrLoginTaken
		}
		fields["login"] = *p.Login
	}
	if p.Email != nil && *p.Email != cur.Email {
		taken, err := s.users.IsEmailTaken(ctx, *p.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		fields["email"] = *p.Email
	}
	if p.Firstname != nil && *p.Firstname != cur.Firstname {
		fields["firstname"] = *p.Firstname
	}
	if p.Lastname != nil && *p.Lastname != cur.Lastname {
		fields["lastname"] = *p.Lastname
	}
	if p.Password != nil && *p.Password != "" && !utils.CheckPassword(*p.Password, cur.PasswordHash) {
		if !utils.ValidPassword(*p.Password) {
			return ErrWeakPassword
		}
		hash, err := utils.HashPassword(*p.Password)
		if err != nil {
			return err
		}
		fields["password_hash"] = hash
	}

	if len(fields) == 0 {
		return ErrNoChanges
	}
	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		return mapStoreErr(err)
	}
	s.log.Info("user updated", zap.String("user_id", id), zap.Int("fields", len(fields)))
	return nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.ListActive(ctx, offset, limit, q)
}

func (s *UserService) RecentLogins(ctx context.Context, userID string, limit int) ([]domain.LoginLog, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.logs.RecentByUser(ctx, userID, limit)
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateLogin):
		return ErrLoginTaken
	case errors.Is(err, domain.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
