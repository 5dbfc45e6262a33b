package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenIssuerName = "jobboard-api"
	TokenAudience   = "jobboard-client"
)

// Claims is the verified content of an access token.
type Claims struct {
	UserID    uint
	Role      models.Role
	JTI       string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user.
func (t *TokenIssuer) Issue(user *models.User) (string, *Claims, error) {
	if len(t.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	c := &Claims{
		UserID:    user.ID,
		Role:      user.Role,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  TokenIssuerName,
		"aud":  TokenAudience,
		"exp":  c.ExpiresAt.Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  c.JTI,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, c, nil
}

// Parse verifies signature, expiry, issuer and audience.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(TokenIssuerName),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	c := &Claims{UserID: uint(userID)}
	if role, ok := claims["role"].(string); ok {
		c.Role = models.Role(role)
	}
	if jti, ok := claims["jti"].(string); ok {
		c.JTI = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// RegisterInput is the sign-up form. CompanyName is optional for employers;
// the names seed a job seeker profile.
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
}

type AuthService struct {
	db     *gorm.DB
	users  repository.UserRepository
	tokens *TokenIssuer
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		db:     db,
		users:  repository.NewUserRepository(db),
		tokens: tokens,
	}
}

func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// Register creates a jobseeker or employer account together with its
// profile row in one transaction.
func (s *AuthService) Register(ctx context.Context, accountType string, in RegisterInput) (*models.User, error) {
	role, ok := models.ParseRole(accountType)
	if !ok || role == models.RoleAdmin {
		return nil, models.NewValidationError("Account type must be jobseeker or employer")
	}

	user, err := newUser(in, role)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(ctx, repository.NewUserRepository(tx), user); err != nil {
			return err
		}
		switch role {
		case models.RoleJobSeeker:
			return repository.NewJobSeekerRepository(tx).Create(ctx, &models.JobSeeker{
				UserID:    user.ID,
				FirstName: strings.TrimSpace(in.FirstName),
				Surname:   strings.TrimSpace(in.Surname),
			})
		case models.RoleEmployer:
			name := strings.TrimSpace(in.CompanyName)
			if name == "" {
				return nil
			}
			return repository.NewCompanyRepository(tx).Create(ctx, &models.Company{
				UserID: user.ID,
				Name:   name,
				Email:  user.Email,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login checks credentials and returns a fresh token. login may be an email
// or a username.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, models.NewValidationError("Email and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.users.GetByEmail(ctx, login)
	} else {
		user, err = s.users.GetByUsername(ctx, login)
	}
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	if user == nil {
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive() {
		return "", nil, models.NewForbiddenError("This account has been deactivated")
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.JTI == "" {
		return nil
	}
	rdb := cache.GetClient()
	if rdb == nil {
		middleware.Logger.WarnContext(ctx, "redis unavailable, token not revoked", "user_id", claims.UserID)
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := rdb.Set(ctx, BlacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsRevoked reports whether jti was logged out. Redis errors fail open.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) bool {
	rdb := cache.GetClient()
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist check failed", "error", err)
		return false
	}
	return n > 0
}

// EnsureAdmin creates an active admin with the given credentials unless the
// email is already registered. Used by development bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	username := strings.Split(email, "@")[0]
	user, err := newUser(RegisterInput{Username: username, Email: email, Password: password}, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// BlacklistKey is the Redis key marking a revoked token id.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}

func newUser(in RegisterInput, role models.Role) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Role:     role,
		Status:   models.UserStatusActive,
	}, nil
}

// createUser reports taken usernames and emails as conflicts before the
// insert so the message can say which one.
func createUser(ctx context.Context, users repository.UserRepository, user *models.User) error {
	if existing, err := users.GetByEmail(ctx, user.Email); err != nil {
		return models.NewInternalError(err)
	} else if existing != nil {
		return models.NewConflictError("Email is already registered")
	}
	if existing, err := users.GetByUsername(ctx, user.Username); err != nil {
		return models.NewInternalError(err)
	} else if existing != nil {
		return models.NewConflictError("Username is already taken")
	}
	return users.Create(ctx, user)
}
