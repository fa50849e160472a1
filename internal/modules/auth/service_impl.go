package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
)

type service struct {
	accounts account.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service. Tokens are signed with secret and
// expire after tokenTTL.
func NewService(accounts account.Repository, secret []byte, tokenTTL time.Duration) Service {
	return &service{accounts: accounts, secret: secret, tokenTTL: tokenTTL}
}

func (s *service) Login(ctx context.Context, portal account.Role, username, password string) (string, *Principal, error) {
	u, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if u.Role != portal {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	principal, err := s.principalFor(ctx, u)
	if err != nil {
		return "", nil, err
	}

	expirationTime := time.Now().Add(s.tokenTTL)
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: expirationTime.Unix(),
		},
		Role: string(u.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, principal, nil
}

func (s *service) Resolve(ctx context.Context, tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	return s.principalFor(ctx, u)
}

// principalFor builds the request identity for a stored account. For vendor
// and center accounts the linked entity must exist and be active; a
// deactivated entity invalidates its account immediately.
func (s *service) principalFor(ctx context.Context, u *account.PortalUser) (*Principal, error) {
	p := &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}

	switch u.Role {
	case account.RoleVendor:
		if u.VendorID == nil {
			return nil, domain.ErrUnauthenticated
		}
		status, err := s.accounts.VendorStatus(ctx, *u.VendorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrUnauthenticated
			}
			return nil, err
		}
		if status != domain.StatusActive {
			return nil, domain.Inactive("vendor", *u.VendorID)
		}
		p.VendorID = *u.VendorID
	case account.RoleCenter:
		if u.CenterID == nil {
			return nil, domain.ErrUnauthenticated
		}
		status, err := s.accounts.CenterStatus(ctx, *u.CenterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrUnauthenticated
			}
			return nil, err
		}
		if status != domain.StatusActive {
			return nil, domain.Inactive("redemption center", *u.CenterID)
		}
		p.CenterID = *u.CenterID
	}

	return p, nil
}
