package services

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "time"

  "gorm.io/gorm"
  "golang.org/x/crypto/bcrypt"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/requestdata"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  Username    string      `json:"username,omitempty"`
}

type AuthService interface {
  RegisterUser(ctx context.Context, username, email, password string) (string, error)
  Login(ctx context.Context, username, password string) (string, error)

  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

  GetAccessTTL() time.Duration
}

type authService struct {
  db                *gorm.DB
  log               *logger.Logger
  userRepo          repos.UserRepo
  jwtSecretKey      string
  accessTTL         time.Duration
}

func NewAuthService(
  db                *gorm.DB,
  log               *logger.Logger,
  userRepo          repos.UserRepo,
  jwtSecretKey      string,
  accessTTL         time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:           db,
    log:          serviceLog,
    userRepo:     userRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

// RegisterUser creates the account and immediately issues an access token,
// so registration doubles as a first login.
func (as *authService) RegisterUser(ctx context.Context, username, email, password string) (string, error) {
  username = strings.TrimSpace(username)
  email = strings.TrimSpace(strings.ToLower(email))

  //1) Input checks
  if username == "" {
    return "", fmt.Errorf("a username is required to register")
  }
  if email == "" {
    return "", fmt.Errorf("an email is required to register")
  }
  if password == "" {
    return "", fmt.Errorf("a password is required to register")
  }

  //2) Uniqueness checks
  usernameExists, err := as.userRepo.UsernameExists(ctx, nil, username)
  if err != nil {
    as.log.Warn("Failed to check username existence, Cannot proceed further. Returning error.", "error", err)
    return "", fmt.Errorf("Failed checking username '%s' existence: %w", username, err)
  }
  if usernameExists {
    return "", ErrUsernameTaken
  }
  emailExists, err := as.userRepo.EmailExists(ctx, nil, email)
  if err != nil {
    as.log.Warn("Failed to check email existence, Cannot proceed further. Returning error.", "error", err)
    return "", fmt.Errorf("Failed checking email '%s' existence: %w", email, err)
  }
  if emailExists {
    return "", ErrEmailTaken
  }

  //3) Hash Password
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    as.log.Warn("Failure to hash password for user. Returning error", "error", err)
    return "", fmt.Errorf("Failed to hash password for user.")
  }

  //4) Create User
  user := &types.User{
    Username: username,
    Email:    email,
    Password: string(hashedPassword),
  }
  if _, err := as.userRepo.Create(ctx, nil, user); err != nil {
    as.log.Warn("Failed to create user, Cannot proceed further. Returning error.", "error", err)
    return "", fmt.Errorf("Failed to create user: %w", err)
  }

  //5) Issue Access Token
  return as.generateAccessToken(user)
}

func (as *authService) Login(ctx context.Context, username, password string) (string, error) {
  username = strings.TrimSpace(username)
  if username == "" || password == "" {
    return "", ErrInvalidCredentials
  }
  user, err := as.userRepo.GetByUsername(ctx, nil, username)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return "", ErrInvalidCredentials
    }
    as.log.Warn("Failed to fetch user by username, Cannot proceed further. Returning error.", "error", err)
    return "", fmt.Errorf("Failed to fetch user: %w", err)
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return "", ErrInvalidCredentials
  }
  return as.generateAccessToken(user)
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  now := time.Now()
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      IssuedAt:  jwt.NewNumericDate(now),
      ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
    },
    Username: user.Username,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString([]byte(as.jwtSecretKey))
  if err != nil {
    as.log.Warn("Failed to sign access token, Cannot proceed further. Returning error.", "error", err)
    return "", fmt.Errorf("Failed to sign access token: %w", err)
  }
  return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    return ctx, fmt.Errorf("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("invalid token subject")
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
    Username:    claims.Username,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
