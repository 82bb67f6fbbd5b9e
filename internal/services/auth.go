package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/requestdata"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  return &authService{
    db:            db,
    log:           baseLog.With("service", "AuthService"),
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  user.Email = strings.ToLower(strings.TrimSpace(user.Email))
  if user.Email == "" || !strings.Contains(user.Email, "@") {
    return apperr.Validation("invalid email address")
  }
  if len(user.Password) < 8 {
    return apperr.Validation("password must be at least 8 characters")
  }

  exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return apperr.Persistence("check email", err)
  }
  if exists {
    return apperr.Validation("email already registered")
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    return fmt.Errorf("hash password: %w", err)
  }
  user.Password = string(hashed)

  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
      return apperr.Persistence("create user", err)
    }
    return nil
  })
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return "", "", apperr.Persistence("load user by email", err)
  }
  if len(users) == 0 {
    return "", "", apperr.Validation("invalid email or password")
  }
  user := users[0]
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return "", "", apperr.Validation("invalid email or password")
  }

  var accessToken, refreshToken string
  err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    // One live session per user.
    if err := as.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
      return apperr.Persistence("delete stale tokens", err)
    }
    tok, err := as.generateAccessToken(user)
    if err != nil {
      return fmt.Errorf("generate access token: %w", err)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); err != nil {
      return apperr.Persistence("create user token", err)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", apperr.ErrForbidden
  }

  var accessToken, newRefreshToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, err := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
    if err != nil {
      return apperr.Persistence("load refresh token", err)
    }
    if existing == nil {
      return apperr.ErrForbidden
    }
    if existing.ExpiresAt.Before(time.Now()) {
      if err := as.userTokenRepo.DeleteByUserID(ctx, tx, existing.UserID); err != nil {
        as.log.Warn("Failed to delete expired token", "error", err)
      }
      return apperr.ErrForbidden
    }
    users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
    if err != nil {
      return apperr.Persistence("load user for refresh", err)
    }
    if len(users) == 0 {
      return apperr.ErrForbidden
    }
    user := users[0]

    tok, err := as.generateAccessToken(user)
    if err != nil {
      return fmt.Errorf("generate access token: %w", err)
    }
    accessToken = tok
    newRefreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); err != nil {
      return apperr.Persistence("create user token", err)
    }
    if err := as.userTokenRepo.DeleteByAccessToken(ctx, tx, existing.AccessToken); err != nil {
      return apperr.Persistence("delete rotated token", err)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return apperr.ErrForbidden
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := as.userTokenRepo.DeleteByAccessToken(ctx, tx, rd.TokenString); err != nil {
      return apperr.Persistence("delete user token", err)
    }
    return nil
  })
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("invalid user id in token: %w", err)
  }

  var refreshToken string
  found, err := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
  if err != nil {
    as.log.Warn("Error fetching user token by access token", "error", err)
  }
  if found != nil {
    refreshToken = found.RefreshToken
  }

  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: refreshToken,
    UserID:       userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
