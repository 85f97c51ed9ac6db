package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
	"github.com/classtrack/classtrack-backend/internal/types"
)

// AuthService verifies access tokens minted by the identity provider and
// resolves them to a users row. Users are provisioned lazily: the first
// request carrying an unseen subject creates the row.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret string
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, jwtSecret string) AuthService {
	return &authService{
		db:        db,
		log:       baseLog.With("service", "AuthService"),
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// identityClaims is the subset of the provider's JWT payload we consume.
type identityClaims struct {
	Email     string `json:"email"`
	FullName  string `json:"name"`
	AvatarURL string `json:"picture"`
	jwt.RegisteredClaims
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &identityClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecret), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	if !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid token")
	}
	authID := claims.Subject
	if authID == "" {
		return ctx, fmt.Errorf("token has no subject")
	}

	user, err := as.resolveUser(ctx, authID, claims)
	if err != nil {
		return ctx, err
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		AuthID:      authID,
		UserID:      user.ID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) resolveUser(ctx context.Context, authID string, claims *identityClaims) (*types.User, error) {
	user, err := as.userRepo.GetByAuthID(ctx, nil, authID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	now := time.Now().UTC()
	row := &types.User{
		ID:        uuid.New(),
		AuthID:    &authID,
		CreatedAt: now,
	}
	if claims.Email != "" {
		row.Email = &claims.Email
	}
	if claims.FullName != "" {
		row.FullName = &claims.FullName
	}
	if claims.AvatarURL != "" {
		row.AvatarURL = &claims.AvatarURL
	}

	if _, err := as.userRepo.Create(ctx, nil, []*types.User{row}); err != nil {
		// Two first requests can race on the auth_id unique index; the loser
		// re-reads the winner's row.
		if repos.IsUniqueViolation(err) {
			existing, lookupErr := as.userRepo.GetByAuthID(ctx, nil, authID)
			if lookupErr != nil {
				return nil, fmt.Errorf("reload user after create race: %w", lookupErr)
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("provision user: %w", err)
	}
	as.log.Info("Provisioned new user", "auth_id", authID)
	return row, nil
}
