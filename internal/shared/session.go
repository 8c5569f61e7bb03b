package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Flash kinds understood by the flash partial.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const sessionKeyPrefix = "odyssey_admin:session:"

// FlashMessage is a notice shown once on the next rendered page. DelayMs
// postpones its display in the browser.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	DelayMs int64  `json:"delay_ms,omitempty"`
}

// SessionManager keeps operator sessions in Redis behind a signed cookie.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID        string
	values    map[string]string
	userID    string
	flashes   []FlashMessage
	previous  string
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values  map[string]string `json:"values"`
	UserID  string            `json:"user_id"`
	Flashes []FlashMessage    `json:"flashes"`
}

// NewSessionManager constructs a SessionManager. secret signs the cookie value.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load returns the session named by the request cookie, or a fresh one when
// the cookie is absent, forged or expired.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}
	id, ok := sm.verify(cookie.Value)
	if !ok {
		return sm.newSession(), nil
	}

	raw, err := sm.client.Get(ctx, sm.redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sm.newSession(), nil
		}
		return nil, err
	}
	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	values := stored.Values
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{ID: id, values: values, userID: stored.UserID, flashes: stored.Flashes}, nil
}

// Commit persists a changed session, or extends the lifetime of an unchanged
// one, and writes the cookie.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}
	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}

	if sess.previous != "" {
		if err := sm.client.Del(ctx, sm.redisKey(sess.previous)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		sess.previous = ""
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sessionPayload{Values: sess.values, UserID: sess.userID, Flashes: sess.flashes})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	} else if err := sm.client.Expire(ctx, sm.redisKey(sess.ID), sm.ttl).Err(); err != nil {
		return err
	}

	http.SetCookie(w, sm.cookie(sm.sign(sess.ID), int(sm.ttl/time.Second)))
	return nil
}

// Regenerate moves the session to a new id, keeping its data. The old key is
// removed on the next Commit.
func (sm *SessionManager) Regenerate(sess *Session) {
	if sess == nil {
		return
	}
	if !sess.isNew && sess.previous == "" {
		sess.previous = sess.ID
	}
	sess.ID = uuid.NewString()
	sess.dirty = true
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Clear drops every stored value and the user, keeping queued flashes.
func (s *Session) Clear() {
	if len(s.values) == 0 && s.userID == "" {
		return
	}
	s.values = make(map[string]string)
	s.userID = ""
	s.dirty = true
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetUser associates the session with a user ID.
func (s *Session) SetUser(id string) {
	if s.userID == id {
		return
	}
	s.userID = id
	s.dirty = true
}

// User returns the current user ID.
func (s *Session) User() string {
	return s.userID
}

// AddFlash queues a flash message. Unknown kinds are shown as info.
func (s *Session) AddFlash(msg FlashMessage) {
	switch msg.Kind {
	case FlashSuccess, FlashInfo, FlashWarning, FlashDanger:
	case "error":
		msg.Kind = FlashDanger
	default:
		msg.Kind = FlashInfo
	}
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlashes retrieves and clears every queued flash message.
func (s *Session) PopFlashes() []FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	out := s.flashes
	s.flashes = nil
	s.dirty = true
	return out
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:     uuid.NewString(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return sessionKeyPrefix + id
}

// sign appends an HMAC of id so forged ids are rejected before Redis is hit.
func (sm *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verify(value string) (string, bool) {
	id, _, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sm.sign(id)), []byte(value)) {
		return "", false
	}
	return id, true
}
