package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
)

// UserResolver はトークンのsubjectからユーザーを解決します (serviceパッケージが実装)
type UserResolver interface {
	ResolveUser(ctx context.Context, userID uint) (*model.User, error)
}

// unauthorized は認証失敗時の共通エラーを返します。
// 失敗理由 (署名不正・期限切れ・ユーザー不在・未認証アカウント) を外部から
// 区別できないよう、メッセージは常に同一にする。
func unauthorized() *model.AppError {
	return model.NewAppError("UNAUTHORIZED", "Could not validate credentials.", "", model.ErrUnauthorized)
}

// AuthMiddleware は Authorization ヘッダーの Bearer トークンを検証し、
// 解決したユーザーをコンテキストに格納するミドルウェアです。
// トークンが無効・期限切れの場合、ユーザーが存在しない場合、
// メール確認が済んでいない場合はいずれも 401 を返す。
func AuthMiddleware(cfg *config.Config, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			// 1. Authorization ヘッダーからトークンを取得
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Auth failed: Authorization header missing")
				webutil.HandleError(w, logger, unauthorized())
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				logger.Warn("Auth failed: Invalid Authorization header format")
				webutil.HandleError(w, logger, unauthorized())
				return
			}
			tokenString := headerParts[1]

			// 2. JWTをパースし、署名と有効期限を検証
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				// 署名アルゴリズムがHMAC系かチェック
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			}, jwt.WithValidMethods([]string{cfg.JWT.Algorithm}))
			if err != nil || !token.Valid {
				logger.Warn("Auth failed: Invalid token", "error", err)
				webutil.HandleError(w, logger, unauthorized())
				return
			}

			// 3. ペイロードから subject (ユーザーID) を取得
			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				logger.Warn("Auth failed: Subject claim missing")
				webutil.HandleError(w, logger, unauthorized())
				return
			}
			userID, err := strconv.ParseUint(subject, 10, 64)
			if err != nil {
				logger.Warn("Auth failed: Invalid subject format", "subject", subject)
				webutil.HandleError(w, logger, unauthorized())
				return
			}

			// 4. ユーザーを解決し、確認済みであることをチェック。
			// 未確認ユーザーはセッションを取得できてもAPIは使えない (ここが唯一のゲート)。
			user, err := resolver.ResolveUser(r.Context(), uint(userID))
			if err != nil {
				logger.Warn("Auth failed: User not resolvable", "user_id", userID)
				webutil.HandleError(w, logger, unauthorized())
				return
			}
			if !user.IsVerified {
				logger.Warn("Auth failed: User not verified", "user_id", userID)
				webutil.HandleError(w, logger, unauthorized())
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, model.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext は認証ミドルウェアが格納したユーザーを取り出します
func GetUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(model.UserKey).(*model.User)
	if !ok {
		// ミドルウェアを通っていないルートから呼ばれた場合の内部エラー
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not get user from context.", "", model.ErrInternalServer)
	}
	return user, nil
}
