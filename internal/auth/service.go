// Package auth はパスワード認証、Google OAuth認証、セッション管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/metrics"
	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
	"github.com/hitoshi/nutricoach/internal/security"
)

// エラーコード
const (
	ErrCodeMissingName   = "MISSING_NAME"
	ErrCodeInvalidEmail  = "INVALID_EMAIL"
	ErrCodeWeakPassword  = "WEAK_PASSWORD"
	ErrCodeOAuthDisabled = "OAUTH_DISABLED"
)

const (
	minPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordLength = 72
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	Image          string
	Provider       string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// ClientInfo はセッションに記録するクライアント情報。
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SignUpInput はパスワードによるユーザー登録の入力値。
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignInInput はパスワードによるサインインの入力値。
type SignInInput struct {
	Email    string
	Password string
}

// Result はサインインの結果。Tokenはクライアントがbearerトークンとして送る値。
type Result struct {
	Token   string
	Session *model.Session
	User    *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	tokens      *Tokens
	sanitizer   security.TextSanitizer
	metrics     metrics.MetricsCollector
	config      ServiceConfig
	bcryptCost  int
	now         func() time.Time
}

// NewService はServiceを生成する。oauthがnilの場合Google認証は無効になる。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	tokens *Tokens,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		sanitizer:   sanitizer,
		metrics:     collector,
		config:      config,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// SignUp はメールアドレスとパスワードでユーザーを登録し、セッションを発行する。
func (s *Service) SignUp(ctx context.Context, in SignUpInput, client ClientInfo) (*Result, error) {
	name := s.sanitizer.Sanitize(in.Name)
	if name == "" {
		return nil, model.NewValidationError(ErrCodeMissingName, "Name is required")
	}
	email, ok := normalizeEmail(in.Email)
	if !ok {
		return nil, model.NewValidationError(ErrCodeInvalidEmail, "A valid email address is required")
	}
	if len(in.Password) < minPasswordLength || len(in.Password) > maxPasswordLength {
		return nil, model.NewValidationError(ErrCodeWeakPassword,
			fmt.Sprintf("Password must be between %d and %d characters", minPasswordLength, maxPasswordLength))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	now := s.now().UTC()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &model.Account{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		ProviderID:   model.ProviderCredential,
		AccountID:    email,
		PasswordHash: &hashStr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateWithAccount(ctx, user, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user and account: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("provider", model.ProviderCredential),
	)

	return s.startSession(ctx, user, client)
}

// SignIn はメールアドレスとパスワードを検証し、セッションを発行する。
// ユーザーが存在しない場合もパスワード不一致と同じエラーを返す。
func (s *Service) SignIn(ctx context.Context, in SignInInput, client ClientInfo) (*Result, error) {
	user, err := s.verifyPassword(ctx, in)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.RecordAuthAttempt(model.ProviderCredential, false)
		return nil, model.NewInvalidCredentialsError()
	}

	s.metrics.RecordAuthAttempt(model.ProviderCredential, true)
	return s.startSession(ctx, user, client)
}

// verifyPassword は資格情報が一致するユーザーを返す。一致しない場合はnil。
func (s *Service) verifyPassword(ctx context.Context, in SignInInput) (*model.User, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok || in.Password == "" {
		return nil, nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	account, err := s.accountRepo.FindByProviderAndAccountID(ctx, model.ProviderCredential, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil || account.UserID != user.ID || account.PasswordHash == nil {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// GoogleEnabled はGoogle認証が設定されているかを返す。
func (s *Service) GoogleEnabled() bool {
	return s.oauth != nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録のGoogleアカウントの場合、同じ確認済みメールアドレスのユーザーがいればaccountを紐づけ、
// いなければusersレコードとaccountsレコードを同時に作成する。
func (s *Service) HandleCallback(ctx context.Context, code string, client ClientInfo) (*Result, error) {
	if s.oauth == nil {
		return nil, model.NewValidationError(ErrCodeOAuthDisabled, "Google sign-in is not configured")
	}

	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.RecordAuthAttempt(model.ProviderGoogle, false)
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	user, err := s.resolveOAuthUser(ctx, info)
	if err != nil {
		s.metrics.RecordAuthAttempt(info.Provider, false)
		return nil, err
	}

	s.metrics.RecordAuthAttempt(info.Provider, true)
	return s.startSession(ctx, user, client)
}

func (s *Service) resolveOAuthUser(ctx context.Context, info *OAuthUserInfo) (*model.User, error) {
	account, err := s.accountRepo.FindByProviderAndAccountID(ctx, info.Provider, info.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account != nil {
		user, err := s.userRepo.FindByID(ctx, account.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		if user == nil {
			return nil, model.NewUserNotFoundError()
		}
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.String("provider", info.Provider),
		)
		return user, nil
	}

	email, ok := normalizeEmail(info.Email)
	if !ok {
		return nil, fmt.Errorf("oauth provider returned invalid email")
	}
	now := s.now().UTC()
	newAccount := &model.Account{
		ID:         uuid.New().String(),
		ProviderID: info.Provider,
		AccountID:  info.ProviderUserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if info.EmailVerified {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
		if existing != nil {
			newAccount.UserID = existing.ID
			if err := s.accountRepo.Create(ctx, newAccount); err != nil {
				return nil, fmt.Errorf("failed to link account: %w", err)
			}
			slog.Info("linked oauth account to existing user",
				slog.String("user_id", existing.ID),
				slog.String("provider", info.Provider),
			)
			return existing, nil
		}
	}

	name := s.sanitizer.Sanitize(info.Name)
	if name == "" {
		name = email
	}
	user := &model.User{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		EmailVerified: info.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if info.Image != "" {
		image := info.Image
		user.Image = &image
	}
	newAccount.UserID = user.ID

	if err := s.userRepo.CreateWithAccount(ctx, user, newAccount); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user and account: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("provider", info.Provider),
	)
	return user, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return model.NewAuthenticationRequiredError()
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}

// CurrentSession はセッションとそのユーザーを返す。
func (s *Service) CurrentSession(ctx context.Context, sessionID string) (*model.Session, *model.User, error) {
	if sessionID == "" {
		return nil, nil, model.NewAuthenticationRequiredError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil, model.NewAuthenticationRequiredError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewAuthenticationRequiredError()
	}

	return session, user, nil
}

// ResolveToken はbearerトークンを検証し、有効なセッションを返す。
// トークンが不正、セッションが失効済み、またはsubとセッションの所有者が異なる場合はnilを返す。
func (s *Service) ResolveToken(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		slog.Debug("rejected bearer token", slog.String("error", err.Error()))
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, nil
	}
	return session, nil
}

// startSession はセッションを作成し、対応するトークンを発行する。
func (s *Service) startSession(ctx context.Context, user *model.User, client ClientInfo) (*Result, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		IPAddress: optionalString(client.IPAddress),
		UserAgent: optionalString(client.UserAgent),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}

	return &Result{Token: token, Session: session, User: user}, nil
}

// normalizeEmail はメールアドレスを小文字化し、形式を検証する。
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
