package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// Using a fake (not a mock framework) keeps tests dependency-free and easy
// to read — you can see exactly what the fake does.
//
// The mutex matters: it lets the fake enforce email uniqueness under
// concurrent Insert calls the same way the real UNIQUE(email) constraint
// does, which is what the concurrent-registration test relies on.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	nextID  int64
	// set to a non-nil error to simulate a database failure
	findErr   error
	insertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.UserID == userID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", "")
}

func (f *fakeUserRepo) Insert(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	// UNIQUE(email): first insert wins, second gets the duplicate error
	if _, exists := f.byEmail[user.Email]; exists {
		return apperror.DuplicateEmail()
	}
	f.nextID++
	user.UserID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	return nil, apperror.NotFound("profile", "")
}

func (f *fakeUserRepo) UpsertProfile(ctx context.Context, profile *model.UserProfile) error {
	return nil
}

// newTestAuthService returns an AuthService wired with fake dependencies.
// The TokenService uses a short secret, suitable for tests only.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is bcrypt minimum — makes tests fast
	ps := auth.NewPasswordServiceForTest(4)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, ts, ps, logger)
}

// =========================================================================
// Register TESTS
// =========================================================================

func TestRegister_NewUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), "musician@example.com", "str0ng-password", "drumgirl")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User == nil {
		t.Fatal("Register() returned nil User")
	}
	if result.Token == "" {
		t.Fatal("Register() returned empty Token")
	}
	if result.User.UserID == 0 {
		t.Error("Register() user was not assigned an ID")
	}
	if result.User.Nickname != "drumgirl" {
		t.Errorf("User.Nickname = %q, want %q", result.User.Nickname, "drumgirl")
	}
	if !result.User.IsActive {
		t.Error("Register() user should start active")
	}

	// The stored hash must not be the plaintext
	if result.User.PasswordHash == nil {
		t.Fatal("Register() stored no password hash")
	}
	if *result.User.PasswordHash == "str0ng-password" {
		t.Error("Register() stored the plaintext password")
	}

	// Registration doubles as the first login — the token must resolve.
	user, err := svc.ResolveIdentity(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ResolveIdentity() on fresh registration token: %v", err)
	}
	if user.Email != "musician@example.com" {
		t.Errorf("resolved email = %q, want %q", user.Email, "musician@example.com")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "taken@example.com", "password-1", "first"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "taken@example.com", "password-2", "second")
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	// Both goroutines pass the pre-insert lookup (no account exists yet);
	// the store's uniqueness constraint must still let exactly one win.
	const attempts = 2
	errs := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.Register(context.Background(), "raced@example.com", "password", "racer")
			errs <- err
		}()
	}
	start.Done()

	var ok, dup int
	for i := 0; i < attempts; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error from concurrent Register(): %v", err)
		}
	}

	if ok != 1 || dup != 1 {
		t.Errorf("concurrent Register(): %d succeeded, %d duplicate; want exactly 1 of each", ok, dup)
	}
}

func TestRegister_Validation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	tests := []struct {
		name     string
		email    string
		password string
		nickname string
	}{
		{"empty email", "", "password", "nick"},
		{"email without @", "not-an-email", "password", "nick"},
		{"empty password", "a@example.com", "", "nick"},
		{"empty nickname", "a@example.com", "password", ""},
		{"whitespace nickname", "a@example.com", "password", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.nickname)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "login@example.com", "my-password", "nick"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "login@example.com", "my-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.User.Email != "login@example.com" {
		t.Errorf("User.Email = %q, want %q", result.User.Email, "login@example.com")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	svc.Register(context.Background(), "login@example.com", "the-real-password", "nick")

	_, err := svc.Login(context.Background(), "login@example.com", "a-wrong-guess")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	svc.Register(context.Background(), "exists@example.com", "password", "nick")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "password")
	_, errWrong := svc.Login(context.Background(), "exists@example.com", "wrong")

	// Responses must not let a caller enumerate which emails have accounts.
	if errUnknown == nil || errWrong == nil {
		t.Fatal("both logins should have failed")
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("error messages differ: %q vs %q — account enumeration is possible",
			errUnknown.Error(), errWrong.Error())
	}
}

func TestLogin_ProviderOnlyAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	// An account created through a social provider has no password hash.
	repo.Insert(context.Background(), &model.User{
		Email:    "social@example.com",
		Nickname: "socialite",
		IsActive: true,
	})

	_, err := svc.Login(context.Background(), "social@example.com", "anything")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), "inactive@example.com", "password", "nick")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Deactivate the stored account
	repo.mu.Lock()
	repo.byEmail[result.User.Email].IsActive = false
	repo.mu.Unlock()

	_, err = svc.Login(context.Background(), "inactive@example.com", "password")
	if !errors.Is(err, apperror.ErrInactiveAccount) {
		t.Fatalf("Login() error = %v, want ErrInactiveAccount", err)
	}
}

func TestLogin_InactiveAccountWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, _ := svc.Register(context.Background(), "inactive@example.com", "password", "nick")
	repo.mu.Lock()
	repo.byEmail[result.User.Email].IsActive = false
	repo.mu.Unlock()

	// The inactive check runs only AFTER the password verifies — a caller
	// without the password must not learn the account is deactivated.
	_, err := svc.Login(context.Background(), "inactive@example.com", "wrong-password")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials (not ErrInactiveAccount)", err)
	}
}

// =========================================================================
// ResolveIdentity TESTS
// =========================================================================

func TestResolveIdentity_ValidToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), "resolve@example.com", "password", "nick")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.ResolveIdentity(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.UserID != result.User.UserID {
		t.Errorf("resolved UserID = %d, want %d", user.UserID, result.User.UserID)
	}
}

func TestResolveIdentity_GarbageToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.ResolveIdentity(context.Background(), "not-a-token")
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("ResolveIdentity() error = %v, want ErrInvalidToken", err)
	}
}

func TestResolveIdentity_UnknownSubject(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	// Valid signature, but the subject has no account — a token for a
	// deleted user must look exactly like a forged one.
	ts, _ := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	token, _ := ts.Generate("ghost@example.com")

	_, err := svc.ResolveIdentity(context.Background(), token)
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("ResolveIdentity() error = %v, want ErrInvalidToken", err)
	}
}

func TestResolveIdentity_TokenSignedWithDifferentKey(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	svc.Register(context.Background(), "resolve@example.com", "password", "nick")

	other, _ := auth.NewTokenService("a-completely-different-secret!!!", time.Hour)
	forged, _ := other.Generate("resolve@example.com")

	_, err := svc.ResolveIdentity(context.Background(), forged)
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("ResolveIdentity() error = %v, want ErrInvalidToken", err)
	}
}
