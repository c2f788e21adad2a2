package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/taskboard-api/internal/user"
)

// stubUserStore keeps users in a map keyed by normalized email.
type stubUserStore struct {
	users       map[string]*user.User
	lastCreated *user.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*user.User)}
}

func (s *stubUserStore) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	if _, exists := s.users[email]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[email] = u
	s.lastCreated = u
	return u, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *stubUserStore) {
	t.Helper()
	store := newStubUserStore()
	return NewService(store, newTestPasetoService(t), time.Hour), store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t)

	created, token, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if created.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lower case", created.Email)
	}
	if created.Name != "Alice" {
		t.Errorf("name = %q", created.Name)
	}

	// Password is stored hashed, and the hash verifies
	stored := store.lastCreated
	if stored.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	// The returned token is immediately usable
	pasetoSvc := newTestPasetoService(t)
	claims, err := pasetoSvc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != created.ID {
		t.Errorf("token user = %s, want %s", claims.UserID, created.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "", "a@example.com", "password1", ErrNameRequired},
		{"whitespace name", "   ", "a@example.com", "password1", ErrNameRequired},
		{"empty email", "Alice", "", "password1", ErrEmailRequired},
		{"malformed email", "Alice", "not-an-email", "password1", ErrInvalidEmailFormat},
		{"email with spaces", "Alice", "a b@example.com", "password1", ErrInvalidEmailFormat},
		{"empty password", "Alice", "a@example.com", "", ErrPasswordRequired},
		{"short password", "Alice", "a@example.com", "1234567", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)

			_, _, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register error = %v, want %v", err, tt.wantErr)
			}
			if store.lastCreated != nil {
				t.Error("store was called despite validation failure")
			}
		})
	}
}

func TestRegisterOverlongEmail(t *testing.T) {
	svc, _ := newTestService(t)

	local := make([]byte, 250)
	for i := range local {
		local[i] = 'a'
	}
	email := string(local) + "@example.com"

	_, _, err := svc.Register(context.Background(), "Alice", email, "password1")
	if !errors.Is(err, ErrInvalidEmailFormat) {
		t.Errorf("Register error = %v, want ErrInvalidEmailFormat", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same address, different case
	_, _, err := svc.Register(ctx, "Mallory", "ALICE@example.com", "password2")
	if !errors.Is(err, user.ErrDuplicateEmail) {
		t.Errorf("second Register error = %v, want ErrDuplicateEmail", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	loggedIn, token, err := svc.Login(ctx, "Alice@Example.COM", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != registered.ID {
		t.Errorf("logged in as %s, want %s", loggedIn.ID, registered.ID)
	}
	if token == "" {
		t.Error("Login returned an empty token")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "password1"},
		{"wrong password", "alice@example.com", "wrong-password"},
		{"empty email", "", "password1"},
		{"empty password", "alice@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
