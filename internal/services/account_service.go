package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrEmailTaken           = errors.New("an account with this email already exists")
	ErrAccountNotFound      = errors.New("no account found for this email")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// ValidationError lists the signup fields that were missing or malformed.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,contains=@,contains=."`
	Location string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AccountService handles registration and credential checks.
type AccountService struct {
	repo       repository.AccountRepository
	validate   *validator.Validate
	now        Clock
	bcryptCost int

	// mu serializes read-modify-write cycles on the registry
	mu sync.Mutex
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo repository.AccountRepository, now Clock) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		repo:       repo,
		validate:   validator.New(),
		now:        now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// NormalizeEmail trims and lower-cases an email so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input and appends a new account to the registry.
// It does not start a session.
func (s *AccountService) Register(ctx context.Context, input SignupInput) (*models.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = NormalizeEmail(input.Email)
	input.Location = strings.TrimSpace(input.Location)
	input.Username = strings.TrimSpace(input.Username)

	if err := s.validateSignup(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := findAccount(accounts, input.Email); ok {
		return nil, ErrEmailTaken
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		Name:         input.Name,
		Email:        input.Email,
		Location:     input.Location,
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.SaveAll(ctx, append(accounts, account)); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	return &account, nil
}

// Authenticate looks the account up by email and checks the password.
// An unknown email and a wrong password are reported differently.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetByEmail returns the stored account for email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	accounts, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	account, ok := findAccount(accounts, NormalizeEmail(email))
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (s *AccountService) validateSignup(input SignupInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate signup: %w", err)
	}

	seen := make(map[string]struct{}, len(fieldErrs))
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		verr.Fields = append(verr.Fields, field)
	}
	return verr
}

// load returns the registry, folding in the legacy singleton record if one
// is still present. Callers hold s.mu.
func (s *AccountService) load(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	legacy, err := s.repo.FindLegacy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy account: %w", err)
	}
	if legacy == nil {
		return accounts, nil
	}

	email := NormalizeEmail(legacy.Email)
	if _, exists := findAccount(accounts, email); !exists && email != "" {
		hash, err := s.hash(legacy.Password)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, models.Account{
			Name:         legacy.Name,
			Email:        email,
			Location:     legacy.Location,
			Username:     legacy.Username,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		})
		if err := s.repo.SaveAll(ctx, accounts); err != nil {
			return nil, fmt.Errorf("failed to migrate legacy account: %w", err)
		}
	}

	if err := s.repo.DeleteLegacy(ctx); err != nil {
		return nil, fmt.Errorf("failed to remove legacy account: %w", err)
	}

	return accounts, nil
}

func (s *AccountService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

func findAccount(accounts []models.Account, email string) (models.Account, bool) {
	for _, a := range accounts {
		if a.Email == email {
			return a, true
		}
	}
	return models.Account{}, false
}
