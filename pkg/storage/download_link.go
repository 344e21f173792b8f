package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidLink = errors.New("invalid download link")
	ErrLinkExpired = errors.New("download link expired")
)

// LinkSigner mints and verifies time-limited download tokens for stored
// blobs. A token names a resource kind and id, e.g. ("project", "<uuid>").
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner constructs a signer with the provided secret and TTL.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a URL-safe token for the resource and its expiry.
func (s *LinkSigner) Sign(kind, id string) (string, time.Time, error) {
	if kind == "" || id == "" {
		return "", time.Time{}, errors.New("kind and id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	subject := base64.RawURLEncoding.EncodeToString([]byte(kind + ":" + id))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{subject, exp, s.mac(subject, exp)}, "."), expiresAt, nil
}

// Verify checks the signature and expiry and returns the embedded resource.
func (s *LinkSigner) Verify(token string) (kind, id string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", ErrInvalidLink
	}
	subject, exp, signature := parts[0], parts[1], parts[2]
	if !hmac.Equal([]byte(s.mac(subject, exp)), []byte(signature)) {
		return "", "", ErrInvalidLink
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", ErrInvalidLink
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", "", ErrLinkExpired
	}

	raw, err := base64.RawURLEncoding.DecodeString(subject)
	if err != nil {
		return "", "", ErrInvalidLink
	}
	kind, id, ok := strings.Cut(string(raw), ":")
	if !ok || kind == "" || id == "" {
		return "", "", ErrInvalidLink
	}
	return kind, id, nil
}

func (s *LinkSigner) mac(subject, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(subject + "|" + exp))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
