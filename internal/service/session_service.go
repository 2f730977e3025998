package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

// CacheResetter is implemented by components whose in-memory caches must be
// flushed when the session ends. Logout invalidates dependents, it never
// leaves them stale.
type CacheResetter interface {
	Reset()
}

type ISessionService interface {
	Login(ctx context.Context, email, password string) (*entity.Session, error)
	Signup(ctx context.Context, email, password string) error
	Restore() *entity.Session
	Logout()
	Current() *entity.Session
	RegisterResetter(r CacheResetter)
}

type authAPI interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*entity.Session, error)
	Signup(ctx context.Context, req *dto.SignupRequest) error
}

type sessionService struct {
	api       authAPI
	path      string
	validate  *validator.Validate
	logger    logger.ILogger
	current   *entity.Session
	resetters []CacheResetter
}

func NewSessionService(api authAPI, path string, validate *validator.Validate, sysLogger logger.ILogger) ISessionService {
	return &sessionService{
		api:      api,
		path:     path,
		validate: validate,
		logger:   sysLogger,
	}
}

func (s *sessionService) RegisterResetter(r CacheResetter) {
	s.resetters = append(s.resetters, r)
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	req := &dto.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	session, err := s.api.Login(ctx, req)
	if err != nil {
		s.logger.Warn("session", "login failed", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, err
	}

	s.current = session
	if err := s.persist(session); err != nil {
		// A session that survives only this process is still a session.
		s.logger.Warn("session", "could not persist session", map[string]interface{}{"error": err.Error()})
	}
	s.logger.Info("session", "logged in", map[string]interface{}{"email": session.Email})
	return session, nil
}

func (s *sessionService) Signup(ctx context.Context, email, password string) error {
	req := &dto.SignupRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	return s.api.Signup(ctx, req)
}

// Restore loads the persisted session from disk. Absence, unreadable JSON or
// an expired access token all restore to "not logged in" rather than an
// error; application start must never fail on a bad session file.
func (s *sessionService) Restore() *entity.Session {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.logger.Warn("session", "discarding corrupt session file", map[string]interface{}{"error": err.Error()})
		_ = os.Remove(s.path)
		return nil
	}
	if session.UserId == "" || session.Email == "" {
		_ = os.Remove(s.path)
		return nil
	}
	if session.AccessToken != "" && tokenExpired(session.AccessToken) {
		s.logger.Info("session", "stored token expired", map[string]interface{}{"email": session.Email})
		_ = os.Remove(s.path)
		return nil
	}

	s.current = &session
	return &session
}

func (s *sessionService) Logout() {
	s.current = nil
	_ = os.Remove(s.path)
	for _, r := range s.resetters {
		r.Reset()
	}
	s.logger.Info("session", "logged out", nil)
}

func (s *sessionService) Current() *entity.Session {
	return s.current
}

func (s *sessionService) persist(session *entity.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// tokenExpired checks the exp claim without verifying the signature: the
// client holds no signing key, and the server re-authenticates every request
// anyway. A token we cannot parse at all is treated as expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
