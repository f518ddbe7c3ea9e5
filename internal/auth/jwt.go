package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Provider issues and verifies HS256 access tokens carrying the user id (sub) and role.
type Provider struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewProvider(secret string, ttl time.Duration, clk clock.Clock) *Provider {
	return &Provider{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (p *Provider) Issue(userID int64, role domain.Role) (string, time.Time, error) {
	now := p.clock.Now()
	exp := now.Add(p.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// CurrentUser resolves a bearer token to the calling identity.
func (p *Provider) CurrentUser(token string) (domain.Caller, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Caller{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	switch c.Role {
	case domain.RolePassenger, domain.RoleStaff:
	default:
		return domain.Caller{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	return domain.Caller{UserID: id, Role: c.Role}, nil
}
