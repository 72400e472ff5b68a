package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type authUsecase struct {
	store    domain.Store
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	validate *validator.Validate
}

func NewAuthUsecase(store domain.Store, hasher *auth.PasswordHasher, tokens *auth.TokenService, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
	}
}

// Register creates the account and seeds the profile, extension settings and
// statistics every user starts with.
func (u *authUsecase) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := u.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	users := u.store.Users()
	existing, err := users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, storeError(err, "")
	}
	if existing != nil {
		return nil, apperror.Conflict("Username already exists")
	}
	existing, err = users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, storeError(err, "")
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already exists")
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Username:        input.Username,
		Email:           input.Email,
		Password:        hash,
		Name:            strings.TrimSpace(input.Name),
		Phone:           input.Phone,
		Location:        input.Location,
		CurrentPosition: input.CurrentPosition,
	}
	// The pre-checks above only produce friendlier messages; the store
	// rejects a concurrent duplicate on its own.
	if err := users.Create(ctx, user); err != nil {
		return nil, storeError(err, "Username or email already exists")
	}

	if err := u.seedUserData(ctx, user); err != nil {
		return nil, err
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	logger.Log.Info("User registered", slog.String("user_id", user.ID))
	return &domain.AuthResult{Token: token, User: user}, nil
}

func (u *authUsecase) seedUserData(ctx context.Context, user *domain.User) error {
	if err := u.store.Profiles().Create(ctx, domain.NewDefaultProfile(user)); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return storeError(err, "")
	}
	if err := u.store.ExtensionSettings().Create(ctx, domain.NewDefaultExtensionSettings(user.ID)); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return storeError(err, "")
	}
	if err := u.store.Statistics().Create(ctx, domain.NewEmptyStatistics(user.ID)); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return storeError(err, "")
	}
	return nil
}

// Login accepts either email or username. Both unknown accounts and wrong
// passwords yield the same message.
func (u *authUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	if err := u.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	var (
		user *domain.User
		err  error
	)
	if input.Email != "" {
		user, err = u.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	} else {
		user, err = u.store.Users().GetByUsername(ctx, strings.TrimSpace(input.Username))
	}
	if err != nil {
		return nil, storeError(err, "")
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if err := u.hasher.Verify(user.Password, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, apperror.Internal(err)
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (u *authUsecase) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}
	// Password changes do not go through the profile endpoint.
	patch.Password = nil

	user, err := u.store.Users().Update(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "Email already exists")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}
