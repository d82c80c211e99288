package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	service, err := NewAuthService(privatePEM, publicPEM, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func TestTokenPairRoundTrip(t *testing.T) {
	service := newTestService(t)

	pair, err := service.GenerateTokenPair(42, "editor")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	access, err := service.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if access.UserID != 42 || access.Role != "editor" || access.TokenType != "access" {
		t.Errorf("access claims = %+v", access)
	}
	if access.ID != "" {
		t.Error("access token must not carry a jti")
	}

	refresh, err := service.ValidateToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if refresh.TokenType != "refresh" {
		t.Errorf("refresh token type = %q", refresh.TokenType)
	}
	if refresh.ID == "" {
		t.Error("refresh token must carry a jti for revocation")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	service := newTestService(t)

	if _, err := service.ValidateToken(""); err == nil {
		t.Error("empty token accepted")
	}
	if _, err := service.ValidateToken("not-a-jwt"); err == nil {
		t.Error("malformed token accepted")
	}
}

func TestForeignKeyRejected(t *testing.T) {
	issuer := newTestService(t)
	verifier := newTestService(t)

	pair, err := issuer.GenerateTokenPair(1, "admin")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := verifier.ValidateToken(pair.AccessToken); err == nil {
		t.Error("token signed by a different key accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
