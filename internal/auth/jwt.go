package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of an issued token.
const TokenTTL = 24 * time.Hour

var (
	ErrNoSecret         = errors.New("token secret is empty")
	ErrMalformed        = errors.New("token is malformed")
	ErrExpired          = errors.New("token has expired")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrIncompleteClaims = errors.New("token claims are incomplete")
)

// Claims is the signed payload of a bearer token.
type Claims struct {
	SubjectID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{ID: c.SubjectID, Username: c.Username, Email: c.Email}
}

type Token struct {
	Text      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 tokens with one process-wide
// secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret []byte) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &TokenService{secret: secret, now: time.Now}, nil
}

// Issue signs a token for id, valid for TokenTTL from now.
func (s *TokenService) Issue(id Identity) (Token, error) {
	if id.ID == "" || id.Username == "" || id.Email == "" {
		return Token{}, ErrIncompleteClaims
	}

	// NumericDate has whole-second precision; truncating keeps exp exactly
	// TokenTTL after iat.
	iat := s.now().UTC().Truncate(time.Second)
	exp := iat.Add(TokenTTL)

	claims := Claims{
		SubjectID: id.ID,
		Username:  id.Username,
		Email:     id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	text, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Text: text, IssuedAt: iat, ExpiresAt: exp}, nil
}

func (s *TokenService) Verify(text string) (*Claims, error) {
	return VerifyToken(text, s.secret, s.now())
}

// VerifyToken checks text against secret as of now. A token is expired
// from the instant of its exp claim onward.
func VerifyToken(text string, secret []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(text, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.SubjectID == "" || claims.Username == "" || claims.Email == "" {
		return nil, ErrIncompleteClaims
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
