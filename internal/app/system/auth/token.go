package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// tokenName binds encoded values to this use so a value encoded for another
// purpose with the same keys does not decode as a token.
const tokenName = "liderplan-token"

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

// TokenManager issues and verifies bearer tokens. Tokens are authenticated
// (HMAC) and encrypted (AES) by securecookie, which also embeds the issue
// time and rejects tokens older than the TTL.
type TokenManager struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
}

// NewTokenManager builds a TokenManager. hashKey must be at least 32 bytes;
// blockKey must be 16, 24 or 32 bytes.
func NewTokenManager(hashKey, blockKey []byte, ttl time.Duration) (*TokenManager, error) {
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("token hash key must be at least 32 bytes, got %d", len(hashKey))
	}
	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("token block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(ttl / time.Second))
	sc.MaxLength(0)
	return &TokenManager{sc: sc, ttl: ttl}, nil
}

// TTL returns the token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue returns a token naming the user and the server-side session.
func (m *TokenManager) Issue(userID, sessionID primitive.ObjectID) (string, error) {
	return m.sc.Encode(tokenName, claims{UserID: userID.Hex(), SessionID: sessionID.Hex()})
}

// Parse verifies token and returns the user and session IDs it carries.
func (m *TokenManager) Parse(token string) (userID, sessionID primitive.ObjectID, err error) {
	var c claims
	if token == "" {
		return userID, sessionID, ErrInvalidToken
	}
	if err := m.sc.Decode(tokenName, token, &c); err != nil {
		return userID, sessionID, ErrInvalidToken
	}
	if userID, err = primitive.ObjectIDFromHex(c.UserID); err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidToken
	}
	if sessionID, err = primitive.ObjectIDFromHex(c.SessionID); err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidToken
	}
	return userID, sessionID, nil
}
