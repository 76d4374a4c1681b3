package service

import (
	"context"
	"errors"
	"time"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrDuplicateIdentity = errors.New("username or NHS number already exists")
	ErrWeakPassword      = errors.New("password must be 8+ characters with lowercase, uppercase, number, and special char")
	ErrInvalidRole       = errors.New("invalid role selection")
	// ErrInvalidCredentials deliberately covers "no such user", "wrong
	// password" and "deactivated account" with one message.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrHashingFailed      = errors.New("failed to hash password")
	ErrTokenGeneration    = errors.New("failed to generate authentication token")
)

// RegisterInput carries the credential and profile fields of a registration.
type RegisterInput struct {
	Username    string
	Password    string
	Role        domain.Role
	NHSNumber   string
	Name        string
	Surname     string
	DateOfBirth time.Time
	Address     string
	Email       string
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (token string, account *domain.Account, err error)
	GetJWTSecret() string
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	accountRepo   repository.AccountRepository
	pepper        string
	bcryptCost    int
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService. The pepper and JWT
// secret are validated at config load; an empty value here is a programming
// error, not a runtime condition.
func NewAuthService(accountRepo repository.AccountRepository, pepper, jwtSecret string, bcryptCost int, jwtExpiration time.Duration) AuthService {
	if pepper == "" {
		panic("password pepper cannot be empty")
	}
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		accountRepo:   accountRepo,
		pepper:        pepper,
		bcryptCost:    bcryptCost,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new account registration.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	// 1. Basic input validation
	if input.Username == "" || input.Password == "" || input.NHSNumber == "" {
		return nil, errors.New("username, password, and NHS number cannot be empty")
	}

	// 2. Only patient and therapist self-register; admins are provisioned
	// out of band and deactivated is a terminal state, not a role choice.
	if input.Role != domain.RolePatient && input.Role != domain.RoleTherapist {
		return nil, ErrInvalidRole
	}

	// 3. Password policy
	if !passwordMeetsPolicy(input.Password) {
		return nil, ErrWeakPassword
	}

	// 4. Cheap duplicate check before the expensive hash. The unique
	// indexes remain the authority; a racing insert still surfaces as
	// repository.ErrDuplicate below.
	_, err := s.accountRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrDuplicateIdentity
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 5. Hash the peppered password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password+s.pepper), s.bcryptCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 6. Save the account
	account := &domain.Account{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		NHSNumber:    input.NHSNumber,
		Name:         input.Name,
		Surname:      input.Surname,
		DateOfBirth:  input.DateOfBirth,
		Address:      input.Address,
		Email:        input.Email,
	}
	accountID, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}
	account.ID = accountID

	// Remove password hash before returning
	account.PasswordHash = ""
	return account, nil
}

// Login handles authentication and token generation.
func (s *authService) Login(ctx context.Context, username, password string) (token string, account *domain.Account, err error) {
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	account, err = s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	// Deactivated accounts keep their row (and history) but cannot log in.
	if account.IsDeactivated() {
		return "", nil, ErrInvalidCredentials
	}

	// bcrypt's comparison is constant-time over the digest.
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password+s.pepper)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err = s.generateJWT(account)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	account.PasswordHash = ""
	return token, account, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	AccountID uint        `json:"uid"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a signed token carrying the session principal.
func (s *authService) generateJWT(account *domain.Account) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "physiohub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
