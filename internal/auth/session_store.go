package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

// SessionStore issues, validates and revokes opaque-token sessions backed by
// the sessions table, with a best-effort Redis read-through cache in front.
// A nil Redis client disables caching entirely.
type SessionStore struct {
	DB  *gorm.DB
	RDB *redis.Client
	TTL time.Duration
}

func NewSessionStore(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{DB: db, RDB: rdb, TTL: ttl}
}

// cacheMaxTTL caps the cache entry lifetime so role changes and suspensions
// take effect within minutes even while the session row stays valid.
const cacheMaxTTL = 5 * time.Minute

type cachedSession struct {
	SessionID uuid.UUID         `json:"sid"`
	UserID    uuid.UUID         `json:"uid"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      models.Role       `json:"role"`
	Status    models.UserStatus `json:"status"`
	ExpiresAt time.Time         `json:"exp"`
}

func sessionKey(token string) string { return "session:" + token }

// Create mints a new session for the user. One user may hold any number of
// concurrent sessions.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	token, err := NewSessionToken()
	if err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to generate session token", err)
	}

	sess := models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.TTL),
	}
	if err := s.DB.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, apperr.Wrap(apperr.Infrastructure, "failed to create session", err)
	}
	return &sess, nil
}

// Validate resolves a token to its user. It returns (nil, nil, nil) for a
// missing or expired token and for users that are not active; expiry is never
// auto-extended. Store failures come back as infrastructure errors, distinct
// from the plain "no session" nil.
func (s *SessionStore) Validate(ctx context.Context, token string) (*models.AuthenticatedUser, *models.Session, error) {
	if token == "" {
		return nil, nil, nil
	}

	if user, sess, ok := s.fromCache(ctx, token); ok {
		return user, sess, nil
	}

	var sess models.Session
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Infrastructure, "failed to look up session", err)
	}

	if sess.Expired(time.Now()) || sess.User == nil {
		return nil, nil, nil
	}
	if sess.User.Status != models.UserStatusActive {
		return nil, nil, nil
	}

	s.toCache(ctx, token, &sess)
	return sess.User.Authenticated(), &sess, nil
}

// Delete revokes a session. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if s.RDB != nil {
		if err := s.RDB.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Println("session cache del failed:", err)
		}
	}
	if err := s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return apperr.Wrap(apperr.Infrastructure, "failed to delete session", err)
	}
	return nil
}

// RevokeAll removes every session a user holds, cache entries included.
// Used after a password reset.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if s.RDB != nil {
		var tokens []string
		if err := s.DB.WithContext(ctx).
			Model(&models.Session{}).
			Where("user_id = ?", userID).
			Pluck("token", &tokens).Error; err == nil {
			for _, t := range tokens {
				if err := s.RDB.Del(ctx, sessionKey(t)).Err(); err != nil {
					log.Println("session cache del failed:", err)
				}
			}
		}
	}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return apperr.Wrap(apperr.Infrastructure, "failed to revoke sessions", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry. Validation already treats them
// as absent; this just keeps the table from growing without bound.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.Infrastructure, "failed to purge sessions", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SessionStore) fromCache(ctx context.Context, token string) (*models.AuthenticatedUser, *models.Session, bool) {
	if s.RDB == nil {
		return nil, nil, false
	}

	raw, err := s.RDB.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Println("session cache get failed:", err)
		}
		return nil, nil, false
	}

	var cs cachedSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, nil, false
	}
	if !cs.ExpiresAt.After(time.Now()) || cs.Status != models.UserStatusActive {
		return nil, nil, false
	}

	user := &models.AuthenticatedUser{
		ID:     cs.UserID,
		Name:   cs.Name,
		Email:  cs.Email,
		Role:   cs.Role,
		Status: cs.Status,
	}
	sess := &models.Session{
		ID:        cs.SessionID,
		UserID:    cs.UserID,
		Token:     token,
		ExpiresAt: cs.ExpiresAt,
	}
	return user, sess, true
}

func (s *SessionStore) toCache(ctx context.Context, token string, sess *models.Session) {
	if s.RDB == nil {
		return
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if ttl > cacheMaxTTL {
		ttl = cacheMaxTTL
	}

	raw, err := json.Marshal(cachedSession{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Name:      sess.User.Name,
		Email:     sess.User.Email,
		Role:      sess.User.Role,
		Status:    sess.User.Status,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return
	}
	if err := s.RDB.Set(ctx, sessionKey(token), raw, ttl).Err(); err != nil {
		log.Println("session cache set failed:", err)
	}
}
