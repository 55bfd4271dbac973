package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"curio/internal/models"
	"curio/internal/session"
)

// Status reports the outcome of a login/logout transition. The no-op
// outcomes are successes, reported distinctly so the handler can word
// them differently.
type Status string

const (
	StatusLoggedIn         Status = "Login successful."
	StatusAlreadyConnected Status = "Current user is already connected."
	StatusLoggedOut        Status = "Successfully disconnected."
	StatusNotConnected     Status = "Current user not connected."
)

// allowedIssuers is the accepted identity-provider issuer allow-list.
var allowedIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// UserDirectory is the slice of the user store the service needs.
type UserDirectory interface {
	FindByEmail(email string) (*models.User, error)
	Create(name, email, picture string) (*models.User, error)
}

// SessionBinder is the slice of the session store the service needs.
type SessionBinder interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Service drives the two-state session machine: Anonymous and
// Authenticated. Login verifies the token, derives or creates the local
// user, and binds the session; Logout clears it. Both directions treat
// redundant transitions as no-op successes.
type Service struct {
	verifier Verifier
	users    UserDirectory
	sessions SessionBinder
}

// NewService creates an identity service.
func NewService(verifier Verifier, users UserDirectory, sessions SessionBinder) *Service {
	return &Service{verifier: verifier, users: users, sessions: sessions}
}

// Login verifies rawToken and transitions the request's session to
// Authenticated. A failed verification or disallowed issuer leaves the
// session Anonymous. Re-login by the subject already bound to the session
// is a no-op success.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, rawToken string) (Status, error) {
	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	if !allowedIssuers[claims.Issuer] {
		return "", fmt.Errorf("issuer %q: %w", claims.Issuer, models.ErrWrongIssuer)
	}

	current, err := s.sessions.Get(ctx, r)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if current != nil && current.SubjectID == claims.Subject {
		return StatusAlreadyConnected, nil
	}

	user, err := s.lookupOrCreateUser(claims)
	if err != nil {
		return "", err
	}

	err = s.sessions.Create(ctx, w, &session.Data{
		UserID:      user.ID,
		SubjectID:   claims.Subject,
		IDToken:     rawToken,
		Email:       user.Email,
		DisplayName: user.Name,
		Picture:     user.Picture,
	})
	if err != nil {
		return "", err
	}

	return StatusLoggedIn, nil
}

// Logout transitions the session to Anonymous. Logging out while already
// Anonymous is a no-op success.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) (Status, error) {
	current, err := s.sessions.Get(ctx, r)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if current == nil {
		return StatusNotConnected, nil
	}

	if err := s.sessions.Destroy(ctx, w, r); err != nil {
		return "", err
	}
	return StatusLoggedOut, nil
}

// lookupOrCreateUser finds the user for a verified email, creating one on
// first login. A concurrent first login can lose the insert race on the
// email constraint; the loser re-reads the winner's row.
func (s *Service) lookupOrCreateUser(claims *Claims) (*models.User, error) {
	user, err := s.users.FindByEmail(claims.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(claims.Name, claims.Email, claims.Picture)
	if errors.Is(err, models.ErrConflict) {
		return s.users.FindByEmail(claims.Email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
