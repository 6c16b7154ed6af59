package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	VerifyEmail(ctx context.Context, tokenString string) error
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	ResolveUser(ctx context.Context, userID uint) (*model.User, error)
	DeleteAccount(ctx context.Context, userID uint) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	feedbackRepo repository.FeedbackRepository
	mailer       Mailer
	cfg          *config.Config
}

// NewAuthService は AuthService の新しいインスタンスを生成します
func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, feedbackRepo repository.FeedbackRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		db:           db,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		feedbackRepo: feedbackRepo,
		mailer:       mailer,
		cfg:          cfg,
	}
}

// Register は新しいユーザーを未確認状態で登録し、確認メールの送信を予約します。
// メール送信はベストエフォートのバックグラウンド処理で、リクエストの成否には影響しない。
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var newUser *model.User
	var tokenString string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "Email already registered.", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
		}

		// ユーザー名での重複チェック
		_, err = s.userRepo.FindByUsername(ctx, tx, req.Username)
		if err == nil {
			logger.Warn("Username already exists", "username", req.Username)
			return model.NewAppError("DUPLICATE_USERNAME", "Username already taken.", "username", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check username existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
		}

		// パスワードのハッシュ化
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to process password.", "", err)
		}

		user := &model.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			IsVerified:   false,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// Create内で重複エラーが検知された場合 (レースコンディション対策)
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_ENTRY", "Username or email already taken.", "username,email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to create user.", "", err)
		}
		newUser = user

		// メール確認トークンを生成・保存
		tokenString, err = s.generateAndSaveVerificationToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// メール送信はトランザクション確定後に切り離して実行する。
	// 失敗してもログに残すだけで、呼び出し元には決して伝播しない。
	s.dispatchVerificationEmail(ctx, newUser.Email, tokenString)

	logger.Info("User registered, verification email scheduled", "user_id", newUser.ID, "email", newUser.Email)
	return newUser, nil
}

// VerifyEmail は提供されたトークンを検証し、アカウントを確認済みにします。
// トークンはワンタイムであり、同じトークンでの2回目の呼び出しは NotFound になる。
func (s *authService) VerifyEmail(ctx context.Context, tokenString string) error {
	logger := middleware.GetLogger(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindVerificationToken(ctx, tx, tokenString)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Verification token not found")
				return model.NewAppError("INVALID_TOKEN", "Invalid verification token.", "token", model.ErrNotFound)
			}
			logger.Error("Error finding verification token", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
		}

		// ユーザーを確認済みにする (false への巻き戻しは無い)
		if err := s.userRepo.MarkVerified(ctx, tx, token.UserID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Error("User not found during verification", "user_id", token.UserID)
				return model.NewAppError("NOT_FOUND", "Account not found.", "", model.ErrNotFound)
			}
			logger.Error("Failed to verify user account", "error", err, "user_id", token.UserID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to verify email.", "", err)
		}

		// 使用済みトークンを削除 (単回使用)
		if err := s.tokenRepo.DeleteVerificationToken(ctx, tx, tokenString); err != nil {
			logger.Error("Failed to delete used verification token", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to verify email.", "", err)
		}

		logger.Info("Account verified successfully", "user_id", token.UserID)
		return nil
	})
}

// Login はメールアドレスとパスワードを検証し、署名付きセッショントークンを返します。
// 「ユーザーが存在しない」と「パスワード不一致」は区別できないエラーにする。
// 確認済みかどうかはここではチェックしない (保護エンドポイント側のゲートで行う)。
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "Invalid email or password.", "", model.ErrUnauthorized)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.ID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "Invalid email or password.", "", model.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{
		Issuer:    s.cfg.App.Name,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWT.AccessTokenTTL())),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.cfg.JWT.Algorithm), claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.ID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to issue token.", "", err)
	}

	logger.Info("Login successful", "user_id", user.ID)
	return &model.LoginResponse{AccessToken: signedToken, TokenType: "bearer"}, nil
}

// ResolveUser は認証ミドルウェアのための解決関数です (middleware.UserResolver 実装)
func (s *authService) ResolveUser(ctx context.Context, userID uint) (*model.User, error) {
	return s.userRepo.FindByID(ctx, s.db, userID)
}

// DeleteAccount はユーザーと、そのトークン・フィードバックを
// ひとつのトランザクションで明示的にカスケード削除します。
func (s *authService) DeleteAccount(ctx context.Context, userID uint) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tokenRepo.DeleteVerificationTokensByUserID(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.tokenRepo.DeletePasswordResetTokensByUserID(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.feedbackRepo.DeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, tx, userID)
	})
	if err != nil {
		logger.Error("Failed to delete account", "error", err, "user_id", userID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to delete account.", "", err)
	}

	logger.Info("Account deleted", "user_id", userID)
	return nil
}

// RequestPasswordReset はパスワード再設定メールの送信を予約します。
// メールアドレスが未登録でも成功として扱い、登録の有無を悟られないようにする。
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	logger := middleware.GetLogger(ctx).With("email", email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Password reset requested for non-existent email")
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
	}

	tokenString, err := s.generateAndSavePasswordResetToken(ctx, s.db, user.ID)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.App.FrontendURL, tokenString)
	subject := "Password reset"
	body := fmt.Sprintf("Click the following link to reset your password:\n%s\n\nThis link expires in 1 hour.", resetURL)
	s.dispatchEmail(ctx, user.Email, subject, body)

	logger.Info("Password reset email scheduled")
	return nil
}

// ResetPassword はリセットトークンを検証して新しいパスワードを設定します
func (s *authService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	logger := middleware.GetLogger(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindPasswordResetToken(ctx, tx, tokenString)
		if err != nil {
			return model.NewAppError("INVALID_TOKEN", "This link is invalid or has already been used.", "token", model.ErrInvalidInput)
		}
		if time.Now().After(token.ExpiresAt) {
			_ = s.tokenRepo.DeletePasswordResetToken(ctx, tx, tokenString)
			return model.NewAppError("INVALID_TOKEN", "This link has expired.", "token", model.ErrInvalidInput)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to process password.", "", err)
		}

		if err := s.userRepo.UpdatePasswordHash(ctx, tx, token.UserID, string(hashedPassword)); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to update password.", "", err)
		}

		if err := s.tokenRepo.DeletePasswordResetToken(ctx, tx, tokenString); err != nil {
			logger.Error("Failed to delete used password reset token", "error", err)
		}

		logger.Info("Password reset successfully", "user_id", token.UserID)
		return nil
	})
}

// --- ヘルパー関数 ---

// generateAndSaveVerificationToken は16バイトの乱数から不透明トークンを生成して保存します
func (s *authService) generateAndSaveVerificationToken(ctx context.Context, tx *gorm.DB, userID uint) (string, error) {
	logger := middleware.GetLogger(ctx)
	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		logger.Error("Failed to generate random bytes for token", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to issue token.", "", err)
	}
	tokenString := hex.EncodeToString(tokenBytes)

	verificationToken := &model.VerificationToken{
		Token:  tokenString,
		UserID: userID,
	}
	if err := s.tokenRepo.CreateVerificationToken(ctx, tx, verificationToken); err != nil {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to save token.", "", err)
	}
	return tokenString, nil
}

func (s *authService) generateAndSavePasswordResetToken(ctx context.Context, db *gorm.DB, userID uint) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to issue token.", "", err)
	}
	tokenString := hex.EncodeToString(tokenBytes)
	resetToken := &model.PasswordResetToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := s.tokenRepo.CreatePasswordResetToken(ctx, db, resetToken); err != nil {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to save token.", "", err)
	}
	return tokenString, nil
}

func (s *authService) dispatchVerificationEmail(ctx context.Context, email, token string) {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.App.FrontendURL, token)
	subject := "Email Verification"
	body := fmt.Sprintf("Use the following code to verify your email: %s\n\nOr open this link:\n%s", token, verifyURL)
	s.dispatchEmail(ctx, email, subject, body)
}

// dispatchEmail はメール送信を切り離したゴルーチンで実行します。
// リクエストのキャンセルには連動させず、失敗はログに残すのみ。
func (s *authService) dispatchEmail(ctx context.Context, to, subject, body string) {
	logger := middleware.GetLogger(ctx)
	detachedCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.mailer.Send(detachedCtx, to, subject, body); err != nil {
			logger.Error("Failed to send email", "error", err, "to", to, "subject", subject)
		}
	}()
}
