package account

import (
	"context"
	"crypto/rand"
	"database/sql"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// Service exposes portal credential management. Vendors and centers never
// manage their own credentials; the admin issues and replaces them.
type Service interface {
	VendorCredentials(ctx context.Context, vendorID int64) (*CredentialsInfo, error)
	SetVendorCredentials(ctx context.Context, vendorID int64, req CredentialsRequest) (*PortalUser, error)
	CenterCredentials(ctx context.Context, centerID int64) (*CredentialsInfo, error)
	SetCenterCredentials(ctx context.Context, centerID int64, req CredentialsRequest) (*PortalUser, error)

	CreateAdmin(ctx context.Context, req CredentialsRequest) (*PortalUser, error)
	// EnsureAdmin seeds the first admin account. It does nothing when any
	// admin already exists.
	EnsureAdmin(ctx context.Context, username, password string) error

	// GeneratePassword returns a random password for the admin to hand out.
	GeneratePassword() (string, error)
}

type service struct {
	repo Repository
}

// NewService creates an account service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) VendorCredentials(ctx context.Context, vendorID int64) (*CredentialsInfo, error) {
	first, surname, err := s.repo.VendorName(ctx, vendorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("vendor", vendorID)
		}
		return nil, err
	}

	info := &CredentialsInfo{SuggestedUsername: suggestUsername(first + " " + surname)}
	u, err := s.repo.GetByVendorID(ctx, vendorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return info, nil
		}
		return nil, err
	}
	info.HasCredentials = true
	info.Username = u.Username
	return info, nil
}

func (s *service) SetVendorCredentials(ctx context.Context, vendorID int64, req CredentialsRequest) (*PortalUser, error) {
	if _, _, err := s.repo.VendorName(ctx, vendorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("vendor", vendorID)
		}
		return nil, err
	}

	existing, err := s.repo.GetByVendorID(ctx, vendorID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	u := &PortalUser{Role: RoleVendor, VendorID: &vendorID}
	if existing != nil {
		u = existing
	}
	return s.saveCredentials(ctx, u, req)
}

func (s *service) CenterCredentials(ctx context.Context, centerID int64) (*CredentialsInfo, error) {
	name, err := s.repo.CenterName(ctx, centerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("redemption center", centerID)
		}
		return nil, err
	}

	info := &CredentialsInfo{SuggestedUsername: suggestUsername(name)}
	u, err := s.repo.GetByCenterID(ctx, centerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return info, nil
		}
		return nil, err
	}
	info.HasCredentials = true
	info.Username = u.Username
	return info, nil
}

func (s *service) SetCenterCredentials(ctx context.Context, centerID int64, req CredentialsRequest) (*PortalUser, error) {
	if _, err := s.repo.CenterName(ctx, centerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("redemption center", centerID)
		}
		return nil, err
	}

	existing, err := s.repo.GetByCenterID(ctx, centerID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	u := &PortalUser{Role: RoleCenter, CenterID: &centerID}
	if existing != nil {
		u = existing
	}
	return s.saveCredentials(ctx, u, req)
}

func (s *service) CreateAdmin(ctx context.Context, req CredentialsRequest) (*PortalUser, error) {
	return s.saveCredentials(ctx, &PortalUser{Role: RoleAdmin}, req)
}

func (s *service) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.CreateAdmin(ctx, CredentialsRequest{Username: username, Password: password})
	return err
}

func (s *service) GeneratePassword() (string, error) {
	password := make([]byte, 12)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		password[i] = passwordAlphabet[n.Int64()]
	}
	return string(password), nil
}

// saveCredentials validates, hashes and writes the credentials, creating the
// account if it does not exist yet.
func (s *service) saveCredentials(ctx context.Context, u *PortalUser, req CredentialsRequest) (*PortalUser, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if len(req.Username) < 4 {
		return nil, domain.Invalid("username", "username must be at least 4 characters")
	}
	if len(req.Password) < 8 {
		return nil, domain.Invalid("password", "password must be at least 8 characters")
	}

	exclude := u.ID // uuid.Nil for a new account
	taken, err := s.repo.UsernameTaken(ctx, req.Username, exclude)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Invalid("username", "username %q is already taken", req.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.Username = req.Username
	u.PasswordHash = string(hash)

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
		err = s.repo.Create(ctx, u)
	} else {
		err = s.repo.UpdateCredentials(ctx, u.ID, u.Username, u.PasswordHash)
	}
	if err != nil {
		if database.IsUniqueViolation(err, "portal_users_username_key") {
			return nil, domain.Invalid("username", "username %q is already taken", req.Username)
		}
		return nil, err
	}
	return u, nil
}

// suggestUsername turns a display name into a lowercase dotted handle.
func suggestUsername(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	var parts []string
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, ".")
}
