package service

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/session"
)

func TestSignUp_Success_DefaultBalance(t *testing.T) {
	env := newTestEnv()

	account, sess, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        "alice",
		Password:        "pw",
		ConfirmPassword: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(dec("10000")) {
		t.Errorf("got balance %s, want 10000", account.Balance)
	}
	if len(account.Portfolio) != 0 {
		t.Errorf("got %d positions, want 0", len(account.Portfolio))
	}
	if sess.Username != "alice" {
		t.Errorf("got session username %q, want alice", sess.Username)
	}
	if _, err := env.sessions.Get(sess.ID); err != nil {
		t.Errorf("session not stored: %v", err)
	}
	stored := env.load(t, "alice")
	if stored.Password != "pw" {
		t.Errorf("got stored password %q, want pw", stored.Password)
	}
}

func TestSignUp_Success_CustomBalance(t *testing.T) {
	env := newTestEnv()

	account, _, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        "bob",
		Password:        "pw",
		ConfirmPassword: "pw",
		InitialBalance:  decPtr("2500.50"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(dec("2500.50")) {
		t.Errorf("got balance %s, want 2500.50", account.Balance)
	}
}

func TestSignUp_ZeroBalanceUsesDefault(t *testing.T) {
	env := newTestEnv()

	account, _, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        "carol",
		Password:        "pw",
		ConfirmPassword: "pw",
		InitialBalance:  decPtr("0"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(dec("10000")) {
		t.Errorf("got balance %s, want 10000", account.Balance)
	}
}

func TestSignUp_TrimsUsername(t *testing.T) {
	env := newTestEnv()

	account, _, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        "  dave ",
		Password:        "pw",
		ConfirmPassword: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Username != "dave" {
		t.Errorf("got username %q, want dave", account.Username)
	}
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SignUpRequest
	}{
		{"empty username", SignUpRequest{Username: "", Password: "pw", ConfirmPassword: "pw"}},
		{"blank username", SignUpRequest{Username: "   ", Password: "pw", ConfirmPassword: "pw"}},
		{"empty password", SignUpRequest{Username: "erin", Password: "", ConfirmPassword: ""}},
		{"password mismatch", SignUpRequest{Username: "erin", Password: "pw", ConfirmPassword: "wp"}},
		{"username with space", SignUpRequest{Username: "e rin", Password: "pw", ConfirmPassword: "pw"}},
		{"username with slash", SignUpRequest{Username: "../erin", Password: "pw", ConfirmPassword: "pw"}},
		{"negative balance", SignUpRequest{Username: "erin", Password: "pw", ConfirmPassword: "pw", InitialBalance: decPtr("-1")}},
		{"balance too many decimals", SignUpRequest{Username: "erin", Password: "pw", ConfirmPassword: "pw", InitialBalance: decPtr("10.001")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, _, err := env.accountSvc.SignUp(tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if env.sessions.Len() != 0 {
				t.Errorf("got %d sessions, want 0", env.sessions.Len())
			}
		})
	}
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	env := newTestEnv()
	env.signUp(t, "frank", "100")

	_, _, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        "frank",
		Password:        "other",
		ConfirmPassword: "other",
	})
	if !errors.Is(err, domain.ErrAccountAlreadyExists) {
		t.Fatalf("expected ErrAccountAlreadyExists, got %v", err)
	}
	if got := env.load(t, "frank"); !got.Balance.Equal(dec("100")) {
		t.Errorf("existing account overwritten: balance %s", got.Balance)
	}
}

func TestLogIn_Success(t *testing.T) {
	env := newTestEnv()
	first := env.signUp(t, "grace", "500")

	account, sess, err := env.accountSvc.LogIn(" grace ", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Username != "grace" {
		t.Errorf("got username %q, want grace", account.Username)
	}
	if sess.ID == first.ID {
		t.Error("expected a new session ID on login")
	}
	if env.sessions.Len() != 2 {
		t.Errorf("got %d sessions, want 2", env.sessions.Len())
	}
}

func TestLogIn_InvalidCredentials(t *testing.T) {
	env := newTestEnv()
	env.signUp(t, "heidi", "500")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "heidi", "nope"},
		{"unknown user", "ivan", "secret"},
		{"password prefix", "heidi", "secre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.accountSvc.LogIn(tt.username, tt.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLogIn_MissingFields(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.accountSvc.LogIn("", "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLogOut(t *testing.T) {
	env := newTestEnv()
	sess := env.signUp(t, "judy", "1")

	if err := env.accountSvc.LogOut(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.accountSvc.Authenticate(sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
	if err := env.accountSvc.LogOut(sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second logout, got %v", err)
	}
}

func TestAuthenticate_TouchesSession(t *testing.T) {
	env := newTestEnv()
	sess := env.signUp(t, "ken", "1")

	later := sess.CreatedAt.Add(time.Hour)
	env.accountSvc.now = func() time.Time { return later }

	got, err := env.accountSvc.Authenticate(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sess {
		t.Error("expected the stored session")
	}
	if !got.LastSeen().Equal(later) {
		t.Errorf("got last seen %v, want %v", got.LastSeen(), later)
	}
}

func TestCurrent(t *testing.T) {
	env := newTestEnv()
	sess := env.signUp(t, "leo", "750.25")

	account, err := env.accountSvc.Current(sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(dec("750.25")) {
		t.Errorf("got balance %s, want 750.25", account.Balance)
	}
}

func TestCurrent_VanishedAccountEndsSession(t *testing.T) {
	env := newTestEnv()
	sess := session.New("ghost", time.Now())
	env.sessions.Add(sess)

	_, err := env.accountSvc.Current(sess)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if env.sessions.Len() != 0 {
		t.Errorf("got %d sessions, want 0", env.sessions.Len())
	}
}
