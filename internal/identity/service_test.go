package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"curio/internal/models"
	"curio/internal/session"
)

var testSecret = []byte("test-signing-secret")

const testClientID = "catalog-client-id.example"

// hmacKeyfunc lets tests sign tokens without an RSA key pair.
func hmacKeyfunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return testSecret, nil
}

// signToken mints a token the test verifier accepts, with overridable
// claim fields.
func signToken(t *testing.T, mutate func(*Claims)) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accounts.google.com",
			Subject:   "subject-123",
			Audience:  jwt.ClaimStrings{testClientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:    "Alex Doe",
		Email:   "alex@example.com",
		Picture: "https://example.com/alex.png",
	}
	if mutate != nil {
		mutate(claims)
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return raw
}

type fakeUsers struct {
	byEmail   map[string]*models.User
	creates   int
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}}
}

func (f *fakeUsers) FindByEmail(email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) Create(name, email, picture string) (*models.User, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &models.User{ID: uuid.New(), Name: name, Email: email, Picture: picture}
	f.byEmail[email] = u
	return u, nil
}

type fakeSessions struct {
	current   *session.Data
	creates   int
	destroyed int
}

func (f *fakeSessions) Get(_ context.Context, _ *http.Request) (*session.Data, error) {
	return f.current, nil
}

func (f *fakeSessions) Create(_ context.Context, _ http.ResponseWriter, data *session.Data) error {
	f.creates++
	f.current = data
	return nil
}

func (f *fakeSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	f.current = nil
	return nil
}

func newTestService(users *fakeUsers, sessions *fakeSessions) *Service {
	return NewService(NewTokenVerifier(testClientID, hmacKeyfunc), users, sessions)
}

func loginReq() (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/gconnect", nil)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("first login creates the user and binds the session", func(t *testing.T) {
		users := newFakeUsers()
		sessions := &fakeSessions{}
		svc := newTestService(users, sessions)
		w, r := loginReq()

		status, err := svc.Login(ctx, w, r, signToken(t, nil))
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if status != StatusLoggedIn {
			t.Errorf("status = %q, want %q", status, StatusLoggedIn)
		}
		if users.creates != 1 {
			t.Errorf("user creates = %d, want 1", users.creates)
		}
		if sessions.current == nil {
			t.Fatal("no session bound after login")
		}
		if sessions.current.SubjectID != "subject-123" {
			t.Errorf("SubjectID = %q, want %q", sessions.current.SubjectID, "subject-123")
		}
		if sessions.current.Email != "alex@example.com" {
			t.Errorf("Email = %q, want %q", sessions.current.Email, "alex@example.com")
		}
	})

	t.Run("returning user is looked up, not recreated", func(t *testing.T) {
		users := newFakeUsers()
		existing := &models.User{ID: uuid.New(), Name: "Alex Doe", Email: "alex@example.com"}
		users.byEmail[existing.Email] = existing
		sessions := &fakeSessions{}
		svc := newTestService(users, sessions)
		w, r := loginReq()

		if _, err := svc.Login(ctx, w, r, signToken(t, nil)); err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if users.creates != 0 {
			t.Errorf("user creates = %d, want 0", users.creates)
		}
		if sessions.current.UserID != existing.ID {
			t.Errorf("session UserID = %v, want %v", sessions.current.UserID, existing.ID)
		}
	})

	t.Run("re-login by the bound subject is a no-op", func(t *testing.T) {
		users := newFakeUsers()
		sessions := &fakeSessions{current: &session.Data{
			UserID:    uuid.New(),
			SubjectID: "subject-123",
		}}
		svc := newTestService(users, sessions)
		w, r := loginReq()

		status, err := svc.Login(ctx, w, r, signToken(t, nil))
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if status != StatusAlreadyConnected {
			t.Errorf("status = %q, want %q", status, StatusAlreadyConnected)
		}
		if sessions.creates != 0 || users.creates != 0 {
			t.Error("no-op re-login touched the session or user stores")
		}
	})

	t.Run("disallowed issuer is rejected", func(t *testing.T) {
		users := newFakeUsers()
		sessions := &fakeSessions{}
		svc := newTestService(users, sessions)
		w, r := loginReq()

		token := signToken(t, func(c *Claims) { c.Issuer = "https://evil.example.com" })
		_, err := svc.Login(ctx, w, r, token)
		if !errors.Is(err, models.ErrWrongIssuer) {
			t.Fatalf("error = %v, want ErrWrongIssuer", err)
		}
		if sessions.current != nil {
			t.Error("session bound despite rejected issuer")
		}
	})

	t.Run("https issuer form is accepted", func(t *testing.T) {
		svc := newTestService(newFakeUsers(), &fakeSessions{})
		w, r := loginReq()

		token := signToken(t, func(c *Claims) { c.Issuer = "https://accounts.google.com" })
		if _, err := svc.Login(ctx, w, r, token); err != nil {
			t.Errorf("Login() error: %v", err)
		}
	})

	t.Run("wrong audience is rejected", func(t *testing.T) {
		sessions := &fakeSessions{}
		svc := newTestService(newFakeUsers(), sessions)
		w, r := loginReq()

		token := signToken(t, func(c *Claims) { c.Audience = jwt.ClaimStrings{"someone-else"} })
		if _, err := svc.Login(ctx, w, r, token); err == nil {
			t.Fatal("Login() accepted a token for another audience")
		}
		if sessions.current != nil {
			t.Error("session bound despite rejected token")
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		svc := newTestService(newFakeUsers(), &fakeSessions{})
		w, r := loginReq()

		token := signToken(t, func(c *Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})
		if _, err := svc.Login(ctx, w, r, token); err == nil {
			t.Fatal("Login() accepted an expired token")
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		svc := newTestService(newFakeUsers(), &fakeSessions{})
		w, r := loginReq()

		if _, err := svc.Login(ctx, w, r, "not-a-jwt"); err == nil {
			t.Fatal("Login() accepted a malformed token")
		}
	})

	t.Run("insert race loser re-reads the winner", func(t *testing.T) {
		users := newFakeUsers()
		winner := &models.User{ID: uuid.New(), Email: "alex@example.com"}
		users.createErr = models.ErrConflict
		sessions := &fakeSessions{}
		svc := newTestService(users, sessions)
		w, r := loginReq()

		// Simulate the concurrent winner appearing between the failed
		// insert and the re-read.
		users.byEmail[winner.Email] = winner

		if _, err := svc.Login(ctx, w, r, signToken(t, nil)); err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if sessions.current.UserID != winner.ID {
			t.Errorf("session UserID = %v, want the winner %v", sessions.current.UserID, winner.ID)
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears a bound session", func(t *testing.T) {
		sessions := &fakeSessions{current: &session.Data{UserID: uuid.New()}}
		svc := newTestService(newFakeUsers(), sessions)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/gdisconnect", nil)

		status, err := svc.Logout(ctx, w, r)
		if err != nil {
			t.Fatalf("Logout() error: %v", err)
		}
		if status != StatusLoggedOut {
			t.Errorf("status = %q, want %q", status, StatusLoggedOut)
		}
		if sessions.destroyed != 1 || sessions.current != nil {
			t.Error("session not destroyed")
		}
	})

	t.Run("anonymous logout is a distinct no-op", func(t *testing.T) {
		sessions := &fakeSessions{}
		svc := newTestService(newFakeUsers(), sessions)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/gdisconnect", nil)

		status, err := svc.Logout(ctx, w, r)
		if err != nil {
			t.Fatalf("Logout() error: %v", err)
		}
		if status != StatusNotConnected {
			t.Errorf("status = %q, want %q", status, StatusNotConnected)
		}
		if sessions.destroyed != 0 {
			t.Error("Destroy called for an anonymous logout")
		}
	})
}
