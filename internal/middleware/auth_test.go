// internal/middleware/auth_test.go
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver はテスト用の固定ユーザー解決器です
type stubResolver struct {
	users map[uint]*model.User
}

func (s *stubResolver) ResolveUser(ctx context.Context, userID uint) (*model.User, error) {
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	return nil, model.ErrNotFound
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:          "middleware-test-secret",
			Algorithm:          "HS256",
			AccessTokenTTLMins: 60,
		},
	}
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, userID uint, expiresAt time.Time) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testAuthConfig()
	resolver := &stubResolver{
		users: map[uint]*model.User{
			1: {ID: 1, Username: "verified", IsVerified: true},
			2: {ID: 2, Username: "unverified", IsVerified: false},
		},
	}

	// 成功時はコンテキストにユーザーが入っていることを確認するハンドラ
	var gotUser *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromContext(r.Context())
		require.NoError(t, err)
		gotUser = user
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.AuthMiddleware(cfg, resolver)(next)

	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "正常系: 確認済みユーザーの有効なトークン",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS256, cfg.JWT.SecretKey, 1, future),
			wantStatus: http.StatusOK,
		},
		{
			name:       "異常系: ヘッダーなし",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: Bearer形式でないヘッダー",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: トークンが壊れている",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 別の鍵で署名されたトークン",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS256, "other-secret", 1, future),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 許可されていないアルゴリズム",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS512, cfg.JWT.SecretKey, 1, future),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 期限切れのトークン",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS256, cfg.JWT.SecretKey, 1, time.Now().Add(-time.Minute)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 存在しないユーザーのトークン",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS256, cfg.JWT.SecretKey, 99, future),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: メール未確認ユーザーのトークン",
			authHeader: "Bearer " + signToken(t, jwt.SigningMethodHS256, cfg.JWT.SecretKey, 2, future),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = nil
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, gotUser)
				assert.Equal(t, uint(1), gotUser.ID)
			} else {
				// 失敗レスポンスは常に同一で、チャレンジヘッダーが付く
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}
