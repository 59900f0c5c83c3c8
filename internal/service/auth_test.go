package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-do-not-use"

func newAuth(t *testing.T, password string) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return service.NewAuthService(string(hash), testSecret, time.Hour, zap.NewNop())
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc := newAuth(t, "caja2025")

	resp, err := svc.Login(context.Background(), "caja2025")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a token")
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected expiresIn 3600, got %d", resp.ExpiresIn)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Sub != "admin" || claims.Type != "access" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuth(t, "caja2025")

	_, err := svc.Login(context.Background(), "nope")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	svc := service.NewAuthService("", testSecret, time.Hour, zap.NewNop())

	if svc.Enabled() {
		t.Error("expected auth disabled without a password hash")
	}
	_, err := svc.Login(context.Background(), "anything")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error when auth is disabled, got %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAuth(t, "caja2025")

	_, err := svc.ValidateAccessToken("not.a.token")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := newAuth(t, "caja2025")
	resp, err := issuer.Login(context.Background(), "caja2025")
	if err != nil {
		t.Fatal(err)
	}

	verifier := service.NewAuthService("x", "other-secret", time.Hour, zap.NewNop())
	if _, err := verifier.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}
