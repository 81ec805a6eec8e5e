package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrInvalidNonce = errors.New("nonce verification failed")

// NonceService issues and consumes anti-forgery tokens. A token is an
// HMAC-signed (action, timestamp, random) triple and is single-use: consuming
// it a second time fails, which also guards the submission endpoint against
// double-click duplicate submissions.
type NonceService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	used map[string]time.Time
}

func NewNonceService(secret string, ttl time.Duration) *NonceService {
	return &NonceService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		used:   make(map[string]time.Time),
	}
}

// Issue creates a fresh token bound to an action ("register", "delete:17", …).
func (s *NonceService) Issue(action string) string {
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)
	payload := fmt.Sprintf("%s:%d:%s", action, s.now().Unix(), hex.EncodeToString(nonce))
	sig := s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + sig))
}

// Consume verifies a token against its action and marks it spent.
func (s *NonceService) Consume(action, token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidNonce
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) < 4 {
		return ErrInvalidNonce
	}
	sig := parts[len(parts)-1]
	payload := strings.Join(parts[:len(parts)-1], ":")
	if !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return ErrInvalidNonce
	}

	gotAction := strings.Join(parts[:len(parts)-3], ":")
	if gotAction != action {
		return ErrInvalidNonce
	}

	issued, err := strconv.ParseInt(parts[len(parts)-3], 10, 64)
	if err != nil {
		return ErrInvalidNonce
	}
	now := s.now()
	if now.Sub(time.Unix(issued, 0)) > s.ttl {
		return ErrInvalidNonce
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, spent := s.used[token]; spent {
		return ErrInvalidNonce
	}
	s.used[token] = now.Add(s.ttl)
	s.prune(now)
	return nil
}

// prune drops spent tokens past their expiry; callers hold the lock.
func (s *NonceService) prune(now time.Time) {
	for t, exp := range s.used {
		if now.After(exp) {
			delete(s.used, t)
		}
	}
}

func (s *NonceService) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
