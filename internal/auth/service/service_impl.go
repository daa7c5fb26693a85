package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/auth/password"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	"github.com/smallbiznis/wardboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,64}$`)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
	Repo   domain.Repository
	Hasher *password.Hasher `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	cfg    config.Config
	repo   domain.Repository
	hasher *password.Hasher

	// dummyHash is verified against when the username is unknown so both
	// paths cost one key derivation.
	dummyHash string
}

func NewService(p Params) (domain.Service, error) {
	hasher := p.Hasher
	if hasher == nil {
		hasher = password.NewHasher(password.DefaultParams)
	}
	dummy, err := hasher.Hash("wardboard")
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("auth.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Config,
		repo:      p.Repo,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, username, plain string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_, _ = s.hasher.Verify(plain, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		s.log.Warn("stored password hash unreadable", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	if !ok || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hashed, err := s.hasher.Hash(plain); err == nil {
			user.PasswordHash = hashed
			user.UpdatedAt = s.clock.Now()
			if err := s.repo.Update(ctx, s.db, user); err != nil {
				s.log.Warn("password rehash failed", zap.String("user_id", user.ID.String()), zap.Error(err))
			}
		}
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	return s.createUser(ctx, s.db, req)
}

func (s *Service) createUser(ctx context.Context, tx *gorm.DB, req domain.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, domain.ErrInvalidUsername
	}
	if req.Password == "" {
		return nil, domain.ErrInvalidPassword
	}
	role := req.Role
	if role == "" {
		role = domain.RoleViewer
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, tx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.String("role", string(role)),
	)
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id snowflake.ID, req domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Password != "" {
		hashed, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ToggleActive(ctx context.Context, actorID, id snowflake.ID) (*domain.User, error) {
	if actorID == id {
		return nil, domain.ErrSelfDeactivation
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}
	s.log.Info("user toggled",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Bool("is_active", user.IsActive),
	)
	return user, nil
}

func (s *Service) Install(ctx context.Context, username, plain string) (*domain.User, error) {
	var user *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admins, err := s.repo.CountByRole(ctx, tx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if admins > 0 {
			return domain.ErrAlreadyInstalled
		}
		user, err = s.createUser(ctx, tx, domain.CreateUserRequest{
			Username: username,
			Password: plain,
			Role:     domain.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureDefaultAdmin creates the configured admin account on an empty
// installation. It returns nil when an admin already exists.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) (*domain.User, error) {
	user, err := s.Install(ctx, s.cfg.DefaultAdminUsername, s.cfg.DefaultAdminPassword)
	if errors.Is(err, domain.ErrAlreadyInstalled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.log.Warn("default admin created, change its password", zap.String("username", user.Username))
	return user, nil
}
