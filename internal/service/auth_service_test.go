// internal/service/auth_service_test.go
package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/repository/mocks"
	servicemocks "go_feedback_hub/internal/service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 ---
func setupTestDBAuth() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database for testing: " + err.Error())
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "feedback-hub",
			FrontendURL: "http://localhost:3000",
		},
		JWT: config.JWTConfig{
			SecretKey:          "test-secret-key",
			Algorithm:          "HS256",
			AccessTokenTTLMins: 60,
		},
	}
}

// --- Test Register ---
func Test_authService_Register(t *testing.T) {
	ctx := context.Background()

	validReq := &model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	}

	tests := []struct {
		name      string
		req       *model.RegisterRequest
		setupMock func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository)
		wantErr   error
	}{
		{
			name: "正常系: ユーザー登録と確認トークン発行",
			req:  validReq,
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Email).
					Return(nil, model.ErrNotFound).Once()
				userRepo.On("FindByUsername", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Username).
					Return(nil, model.ErrNotFound).Once()
				userRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.User")).
					Run(func(args mock.Arguments) {
						user := args.Get(2).(*model.User)
						assert.Equal(t, validReq.Username, user.Username)
						assert.Equal(t, validReq.Email, user.Email)
						assert.False(t, user.IsVerified)
						// 平文パスワードがそのまま保存されていないこと
						assert.NotEqual(t, validReq.Password, user.PasswordHash)
						user.ID = 1
					}).Return(nil).Once()
				tokenRepo.On("CreateVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.VerificationToken")).
					Run(func(args mock.Arguments) {
						token := args.Get(2).(*model.VerificationToken)
						assert.Equal(t, uint(1), token.UserID)
						// 16バイト乱数のhex表現
						assert.Len(t, token.Token, 32)
					}).Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: メールアドレスが重複",
			req:  validReq,
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Email).
					Return(&model.User{ID: 99, Email: validReq.Email}, nil).Once()
			},
			wantErr: model.ErrConflict,
		},
		{
			name: "異常系: ユーザー名が重複",
			req:  validReq,
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Email).
					Return(nil, model.ErrNotFound).Once()
				userRepo.On("FindByUsername", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Username).
					Return(&model.User{ID: 99, Username: validReq.Username}, nil).Once()
			},
			wantErr: model.ErrConflict,
		},
		{
			name: "異常系: Create時の一意制約違反 (レースコンディション)",
			req:  validReq,
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Email).
					Return(nil, model.ErrNotFound).Once()
				userRepo.On("FindByUsername", ctx, mock.AnythingOfType("*gorm.DB"), validReq.Username).
					Return(nil, model.ErrNotFound).Once()
				userRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.User")).
					Return(model.ErrConflict).Once()
			},
			wantErr: model.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBAuth()
			userRepo := new(mocks.UserRepository)
			tokenRepo := new(mocks.TokenRepository)
			feedbackRepo := new(mocks.FeedbackRepository)
			mailer := new(servicemocks.Mailer)
			// メール送信はバックグラウンドで行われ、呼ばれない場合もある
			mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			tt.setupMock(userRepo, tokenRepo)

			s := NewAuthService(db, userRepo, tokenRepo, feedbackRepo, mailer, testConfig())
			user, err := s.Register(ctx, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, uint(1), user.ID)
				assert.False(t, user.IsVerified)
			}
			userRepo.AssertExpectations(t)
			tokenRepo.AssertExpectations(t)
		})
	}
}

// --- Test VerifyEmail ---
func Test_authService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	tokenString := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name      string
		setupMock func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository)
		wantErr   error
	}{
		{
			name: "正常系: トークンを消費してアカウントを確認済みにする",
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
					Return(&model.VerificationToken{ID: 1, Token: tokenString, UserID: 7}, nil).Once()
				userRepo.On("MarkVerified", ctx, mock.AnythingOfType("*gorm.DB"), uint(7)).
					Return(nil).Once()
				tokenRepo.On("DeleteVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: 存在しないトークン",
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "異常系: 消費済みトークンでの再実行も同じく NotFound",
			setupMock: func(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) {
				// 1回目の成功で削除済みのため、2回目は見つからない
				tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBAuth()
			userRepo := new(mocks.UserRepository)
			tokenRepo := new(mocks.TokenRepository)
			tt.setupMock(userRepo, tokenRepo)

			s := NewAuthService(db, userRepo, tokenRepo, new(mocks.FeedbackRepository), new(servicemocks.Mailer), testConfig())
			err := s.VerifyEmail(ctx, tokenString)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			userRepo.AssertExpectations(t)
			tokenRepo.AssertExpectations(t)
		})
	}
}

// --- Test Login ---
func Test_authService_Login(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	password := "correct-password"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	storedUser := &model.User{
		ID:           42,
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: string(hash),
		IsVerified:   false, // ログイン自体は未確認でも成功する
	}

	tests := []struct {
		name      string
		req       *model.LoginRequest
		setupMock func(userRepo *mocks.UserRepository)
		wantErr   error
	}{
		{
			name: "正常系: 正しい資格情報でトークンが発行される",
			req:  &model.LoginRequest{Email: storedUser.Email, Password: password},
			setupMock: func(userRepo *mocks.UserRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), storedUser.Email).
					Return(storedUser, nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: 存在しないメールアドレス",
			req:  &model.LoginRequest{Email: "nobody@example.com", Password: password},
			setupMock: func(userRepo *mocks.UserRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "nobody@example.com").
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrUnauthorized,
		},
		{
			name: "異常系: パスワード不一致",
			req:  &model.LoginRequest{Email: storedUser.Email, Password: "wrong-password"},
			setupMock: func(userRepo *mocks.UserRepository) {
				userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), storedUser.Email).
					Return(storedUser, nil).Once()
			},
			wantErr: model.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBAuth()
			userRepo := new(mocks.UserRepository)
			tt.setupMock(userRepo)

			s := NewAuthService(db, userRepo, new(mocks.TokenRepository), new(mocks.FeedbackRepository), new(servicemocks.Mailer), cfg)
			resp, err := s.Login(ctx, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				userRepo.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, "bearer", resp.TokenType)

			// 発行されたトークンが検証可能で、subjectがユーザーIDであること
			parsed, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWT.SecretKey), nil
			}, jwt.WithValidMethods([]string{cfg.JWT.Algorithm}))
			require.NoError(t, err)
			require.True(t, parsed.Valid)

			subject, err := parsed.Claims.GetSubject()
			require.NoError(t, err)
			assert.Equal(t, strconv.FormatUint(uint64(storedUser.ID), 10), subject)

			exp, err := parsed.Claims.GetExpirationTime()
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(cfg.JWT.AccessTokenTTL()), exp.Time, time.Minute)

			userRepo.AssertExpectations(t)
		})
	}
}

// --- Test DeleteAccount ---
func Test_authService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBAuth()

	userRepo := new(mocks.UserRepository)
	tokenRepo := new(mocks.TokenRepository)
	feedbackRepo := new(mocks.FeedbackRepository)

	tokenRepo.On("DeleteVerificationTokensByUserID", ctx, mock.AnythingOfType("*gorm.DB"), uint(5)).Return(nil).Once()
	tokenRepo.On("DeletePasswordResetTokensByUserID", ctx, mock.AnythingOfType("*gorm.DB"), uint(5)).Return(nil).Once()
	feedbackRepo.On("DeleteByUserID", ctx, mock.AnythingOfType("*gorm.DB"), uint(5)).Return(nil).Once()
	userRepo.On("Delete", ctx, mock.AnythingOfType("*gorm.DB"), uint(5)).Return(nil).Once()

	s := NewAuthService(db, userRepo, tokenRepo, feedbackRepo, new(servicemocks.Mailer), testConfig())
	err := s.DeleteAccount(ctx, 5)

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
	feedbackRepo.AssertExpectations(t)
}

// --- Test RequestPasswordReset ---
func Test_authService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 未登録のメールアドレスでも成功扱い", func(t *testing.T) {
		db := setupTestDBAuth()
		userRepo := new(mocks.UserRepository)
		tokenRepo := new(mocks.TokenRepository)

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "ghost@example.com").
			Return(nil, model.ErrNotFound).Once()

		s := NewAuthService(db, userRepo, tokenRepo, new(mocks.FeedbackRepository), new(servicemocks.Mailer), testConfig())
		err := s.RequestPasswordReset(ctx, "ghost@example.com")

		require.NoError(t, err)
		// トークンが発行されていないこと
		tokenRepo.AssertNotCalled(t, "CreatePasswordResetToken", mock.Anything, mock.Anything, mock.Anything)
		userRepo.AssertExpectations(t)
	})

	t.Run("正常系: 登録済みメールアドレスにはトークンが発行される", func(t *testing.T) {
		db := setupTestDBAuth()
		userRepo := new(mocks.UserRepository)
		tokenRepo := new(mocks.TokenRepository)
		mailer := new(servicemocks.Mailer)
		mailer.On("Send", mock.Anything, "carol@example.com", mock.Anything, mock.Anything).Return(nil).Maybe()

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "carol@example.com").
			Return(&model.User{ID: 3, Email: "carol@example.com"}, nil).Once()
		tokenRepo.On("CreatePasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PasswordResetToken")).
			Run(func(args mock.Arguments) {
				token := args.Get(2).(*model.PasswordResetToken)
				assert.Equal(t, uint(3), token.UserID)
				assert.True(t, token.ExpiresAt.After(time.Now()))
			}).Return(nil).Once()

		s := NewAuthService(db, userRepo, tokenRepo, new(mocks.FeedbackRepository), mailer, testConfig())
		err := s.RequestPasswordReset(ctx, "carol@example.com")

		require.NoError(t, err)
		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})
}

// --- Test ResetPassword ---
func Test_authService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	tokenString := "reset-token"

	t.Run("正常系: パスワードが更新されトークンは消費される", func(t *testing.T) {
		db := setupTestDBAuth()
		userRepo := new(mocks.UserRepository)
		tokenRepo := new(mocks.TokenRepository)

		tokenRepo.On("FindPasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
			Return(&model.PasswordResetToken{Token: tokenString, UserID: 9, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
		userRepo.On("UpdatePasswordHash", ctx, mock.AnythingOfType("*gorm.DB"), uint(9), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				newHash := args.Get(3).(string)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password-1")))
			}).Return(nil).Once()
		tokenRepo.On("DeletePasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
			Return(nil).Once()

		s := NewAuthService(db, userRepo, tokenRepo, new(mocks.FeedbackRepository), new(servicemocks.Mailer), testConfig())
		err := s.ResetPassword(ctx, tokenString, "new-password-1")

		require.NoError(t, err)
		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("異常系: 期限切れのトークン", func(t *testing.T) {
		db := setupTestDBAuth()
		userRepo := new(mocks.UserRepository)
		tokenRepo := new(mocks.TokenRepository)

		tokenRepo.On("FindPasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
			Return(&model.PasswordResetToken{Token: tokenString, UserID: 9, ExpiresAt: time.Now().Add(-time.Minute)}, nil).Once()
		tokenRepo.On("DeletePasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenString).
			Return(nil).Once()

		s := NewAuthService(db, userRepo, tokenRepo, new(mocks.FeedbackRepository), new(servicemocks.Mailer), testConfig())
		err := s.ResetPassword(ctx, tokenString, "new-password-1")

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		userRepo.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
