package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type fakeOperatorRepo struct {
	byEmail map[string]*models.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{byEmail: make(map[string]*models.Operator)}
}

func (f *fakeOperatorRepo) CreateOperator(_ context.Context, email, displayName string, hash []byte) (*models.Operator, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, models.ErrAlreadyExists
	}
	op := &models.Operator{ID: uuid.New(), Email: email, DisplayName: displayName, PasswordHash: hash}
	f.byEmail[email] = op
	return op, nil
}

func (f *fakeOperatorRepo) GetOperatorByEmail(_ context.Context, email string) (*models.Operator, error) {
	op, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return op, nil
}

func (f *fakeOperatorRepo) GetOperator(_ context.Context, id uuid.UUID) (*models.Operator, error) {
	for _, op := range f.byEmail {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, models.ErrNotFound
}

func newTestApp(t *testing.T, clock clockwork.Clock) (*App, *fakeOperatorRepo) {
	t.Helper()
	tokens, err := NewTokenIssuer("test-secret", time.Hour, clock)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	repo := newFakeOperatorRepo()
	return NewApp(repo, tokens, NewLoginLimiter(time.Minute, 3, clock), bcrypt.MinCost), repo
}

func TestTokenIssueVerify(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer, err := NewTokenIssuer("s3cret", time.Hour, clock)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	op := &models.Operator{ID: uuid.New(), Email: "rafael@cavallin.com"}

	token, claims, err := issuer.Issue(op)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if claims.OperatorID != op.ID {
		t.Errorf("claims.OperatorID = %s, want %s", claims.OperatorID, op.ID)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.Email != op.Email {
		t.Errorf("Verify().Email = %q, want %q", got.Email, op.Email)
	}

	t.Run("tampered", func(t *testing.T) {
		payload, sig, _ := strings.Cut(token, ".")
		if _, err := issuer.Verify(payload + "x." + sig); !errors.Is(err, models.ErrUnauthenticated) {
			t.Errorf("Verify() error = %v, want unauthenticated", err)
		}
	})

	t.Run("other secret", func(t *testing.T) {
		other, _ := NewTokenIssuer("different", time.Hour, clock)
		if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		for _, tok := range []string{"", "abc", ".", "a.b"} {
			if _, err := issuer.Verify(tok); err == nil {
				t.Errorf("Verify(%q) expected error", tok)
			}
		}
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(time.Hour)
		if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
			t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
		}
	})
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour, nil); err == nil {
		t.Error("NewTokenIssuer() expected error for empty secret")
	}
}

func TestLoginLimiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLoginLimiter(time.Minute, 2, clock)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two attempts should be allowed")
	}
	if l.Allow("a") {
		t.Error("third attempt should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys should have their own bucket")
	}

	clock.Advance(time.Minute)
	if !l.Allow("a") {
		t.Error("attempt after refill should be allowed")
	}

	l.Allow("a")
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("attempt after Reset should be allowed")
	}
}

func TestLoginLimiterForgetsIdleEmails(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLoginLimiter(time.Minute, 2, clock)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		l.Allow(email)
	}
	if got := l.size(); got != 3 {
		t.Fatalf("size() = %d, want 3", got)
	}

	clock.Advance(time.Minute)
	l.Allow("a@x.com")
	if got := l.size(); got != 3 {
		t.Errorf("size() before refill = %d, want 3", got)
	}

	clock.Advance(time.Minute)
	l.Allow("d@x.com")
	if got := l.size(); got != 2 {
		t.Errorf("size() after refill = %d, want 2 (a and d)", got)
	}

	// a limited email is still limited until its bucket refills
	l.Allow("d@x.com")
	if l.Allow("d@x.com") {
		t.Error("third attempt for d should be limited")
	}
}

func TestAppLoginUnknownEmailHashesPassword(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, clockwork.NewFakeClock())
	if _, err := app.CreateOperator(ctx, CreateOperatorRequest{
		Email:       "lucas@cavallin.com",
		DisplayName: "Lucas",
		Password:    "correct horse",
	}); err != nil {
		t.Fatal(err)
	}

	var compared [][]byte
	app.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	for _, email := range []string{"lucas@cavallin.com", "nobody@cavallin.com"} {
		if _, err := app.Login(ctx, email, "wrong password"); !errors.Is(err, models.ErrUnauthenticated) {
			t.Fatalf("Login(%s) error = %v, want unauthenticated", email, err)
		}
	}
	if len(compared) != 2 {
		t.Fatalf("bcrypt compares = %d, want one per attempt", len(compared))
	}
	if cost, err := bcrypt.Cost(compared[1]); err != nil || cost != bcrypt.MinCost {
		t.Errorf("unknown email compared against hash with cost %d, %v", cost, err)
	}
}

func TestAppLogin(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, clockwork.NewFakeClock())

	op, err := app.CreateOperator(ctx, CreateOperatorRequest{
		Email:       "  Lucas@Cavallin.com ",
		DisplayName: "Lucas",
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}
	if op.Email != "lucas@cavallin.com" {
		t.Errorf("Email = %q, want normalized", op.Email)
	}

	session, err := app.Login(ctx, "LUCAS@cavallin.com", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	who, err := app.WhoAmI(ctx, session.Token)
	if err != nil {
		t.Fatalf("WhoAmI() error = %v", err)
	}
	if who.ID != op.ID {
		t.Errorf("WhoAmI() = %s, want %s", who.ID, op.ID)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "lucas@cavallin.com", "wrong password"},
		{"unknown email", "nobody@cavallin.com", "correct horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, models.ErrUnauthenticated) {
				t.Errorf("Login() error = %v, want unauthenticated", err)
			}
		})
	}
}

func TestAppLoginRateLimited(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, clockwork.NewFakeClock())

	for i := 0; i < 3; i++ {
		if _, err := app.Login(ctx, "x@y.com", "nope"); !errors.Is(err, models.ErrUnauthenticated) {
			t.Fatalf("attempt %d error = %v, want unauthenticated", i+1, err)
		}
	}
	if _, err := app.Login(ctx, "x@y.com", "nope"); !errors.Is(err, models.ErrResourceExhausted) {
		t.Errorf("Login() error = %v, want resource exhausted", err)
	}
}

func TestCreateOperatorValidation(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, clockwork.NewFakeClock())

	tests := []struct {
		name string
		req  CreateOperatorRequest
	}{
		{"bad email", CreateOperatorRequest{Email: "not-an-email", DisplayName: "A", Password: "12345678"}},
		{"no name", CreateOperatorRequest{Email: "a@b.com", Password: "12345678"}},
		{"short password", CreateOperatorRequest{Email: "a@b.com", DisplayName: "A", Password: "1234"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := app.CreateOperator(ctx, tt.req); !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("CreateOperator() error = %v, want invalid argument", err)
			}
		})
	}
}
