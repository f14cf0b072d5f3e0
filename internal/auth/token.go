package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/nutricoach/internal/model"
)

// TokenIssuer はアクセストークンの発行者名（issクレーム）。
const TokenIssuer = "nutricoach"

// ErrInvalidToken はトークンの署名、期限、発行者のいずれかが不正な場合のエラー。
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims はトークンから取り出したクレーム。
type TokenClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// Tokens はHS256で署名したJWTを発行・検証する。
// subにユーザーID、jtiにセッションIDを格納する。
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens はTokensを生成する。secretには十分な長さのランダム値を渡す。
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue はセッションに対応するトークンを発行する。有効期限はセッションと同じ。
func (t *Tokens) Issue(session *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   session.UserID,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(t.now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse はトークンを検証してクレームを返す。
// 検証に失敗した場合はErrInvalidTokenをラップして返す。
func (t *Tokens) Parse(raw string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing sub or jti", ErrInvalidToken)
	}

	return &TokenClaims{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
