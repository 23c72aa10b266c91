package jwt

import (
	"errors"
	"testing"
	"time"

	"snaproll/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-at-least-16-chars",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-001", "TEACHER")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-001" {
		t.Errorf("期望 UserID=user-001，实际=%s", claims.UserID)
	}
	if claims.Role != "TEACHER" {
		t.Errorf("期望 Role=TEACHER，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("jti 不应为空")
	}
}

func TestGenerateRefreshToken_Type(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-002", "STUDENT")
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 TokenType=refresh，实际=%s", claims.TokenType)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		JWTSecret:       "another-secret-16-chars!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})

	token, err := m.GenerateAccessToken("user-003", "STUDENT")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-at-least-16-chars",
		AccessTokenTTL:  -time.Minute, // 立即过期
		RefreshTokenTTL: 168 * time.Hour,
	})

	token, err := m.GenerateAccessToken("user-004", "TEACHER")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
