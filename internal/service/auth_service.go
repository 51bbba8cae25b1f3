package service

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vietvisa/config"
	"vietvisa/internal/auth"
	"vietvisa/internal/models"
)

type AuthService struct {
	admins AdminStore
	jwtCfg *config.JWTConfig
	oauth  *config.OAuthConfig
	log    *zap.Logger
}

func NewAuthService(admins AdminStore, jwtCfg *config.JWTConfig, oauth *config.OAuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{admins: admins, jwtCfg: jwtCfg, oauth: oauth, log: log}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SessionResult struct {
	Tokens TokenPair         `json:"tokens"`
	User   *models.AdminUser `json:"user"`
}

func (s *AuthService) Login(email, password string) (*SessionResult, error) {
	user, err := s.admins.GetByEmail(strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		// Google-only account.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(user)
}

// LoginWithGoogle signs in a staff member identified by a verified Google
// profile. The email must be on the staff allow list; accounts are linked to
// the Google subject on first sign-in.
func (s *AuthService) LoginWithGoogle(googleID, email, name string) (*SessionResult, error) {
	email = strings.ToLower(email)
	if !s.staffAllowed(email) {
		s.log.Warn("google sign-in rejected", zap.String("email", email))
		return nil, ErrNotStaff
	}

	user, err := s.admins.GetByGoogleID(googleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user, err = s.admins.GetByEmail(email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotStaff
			}
			return nil, err
		}
		user.GoogleID = &googleID
		if name != "" && user.Name == "" {
			user.Name = name
		}
		if err := s.admins.Update(user); err != nil {
			return nil, err
		}
	}
	return s.startSession(user)
}

func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := auth.ParseRefreshToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.admins.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) startSession(user *models.AdminUser) (*SessionResult, error) {
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.admins.TouchLogin(user.ID); err != nil {
		s.log.Warn("failed to record login time",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}
	now := time.Now()
	user.LastLoginAt = &now
	s.log.Info("staff login", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return &SessionResult{Tokens: *tokens, User: user}, nil
}

func (s *AuthService) issueTokens(user *models.AdminUser) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(s.jwtCfg, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.jwtCfg, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) staffAllowed(email string) bool {
	for _, allowed := range s.oauth.AllowedStaffEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}
