// Package storage signs short-lived download links.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrExpiredToken = errors.New("download token expired")
)

// SignedLink is the verified content of a download token.
type SignedLink struct {
	Subject   string
	Resource  string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token granting subject access to resource until the TTL
// elapses.
func (s *SignedURLSigner) Generate(subject, resource string) (string, time.Time, error) {
	if subject == "" || resource == "" {
		return "", time.Time{}, fmt.Errorf("subject and resource required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encSubject := base64.RawURLEncoding.EncodeToString([]byte(subject))
	encResource := base64.RawURLEncoding.EncodeToString([]byte(resource))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{encSubject, ts, encResource, s.sign(encSubject, ts, encResource)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token's signature and expiry.
func (s *SignedURLSigner) Parse(token string) (*SignedLink, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrInvalidToken
	}
	encSubject, ts, encResource, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(encSubject, ts, encResource)), []byte(signature)) {
		return nil, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	subject, err := base64.RawURLEncoding.DecodeString(encSubject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	resource, err := base64.RawURLEncoding.DecodeString(encResource)
	if err != nil {
		return nil, ErrInvalidToken
	}

	link := &SignedLink{Subject: string(subject), Resource: string(resource), ExpiresAt: time.Unix(expUnix, 0)}
	if s.now().After(link.ExpiresAt) {
		return nil, ErrExpiredToken
	}
	return link, nil
}

func (s *SignedURLSigner) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
