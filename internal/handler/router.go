package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nutricoach/internal/metrics"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
)

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// リソース
	ProfileService     ProfileServiceInterface
	NutritionService   NutritionServiceInterface
	MealPlanService    MealPlanServiceInterface
	ChatService        ChatServiceInterface
	AchievementService AchievementServiceInterface
	DashboardService   DashboardServiceInterface
	UserService        UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → Metrics → SecurityHeaders → CORS → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// /health, /metrics と認証ルートの一部はセッション不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(metrics.Middleware(collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	nutritionHandler := NewNutritionHandler(deps.NutritionService)
	mealPlanHandler := NewMealPlanHandler(deps.MealPlanService)
	chatHandler := NewChatHandler(deps.ChatService)
	achievementHandler := NewAchievementHandler(deps.AchievementService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)
	userHandler := NewUserHandler(deps.UserService)

	sessionMiddleware := middleware.NewSessionMiddleware(deps.SessionResolver)

	// --- 認証不要のルート ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)

			// Google OAuthフロー（認証情報が設定されている場合のみ）
			if deps.AuthService.GoogleEnabled() {
				r.Get("/google/login", authHandler.GoogleLogin)
				r.Get("/google/callback", authHandler.GoogleCallback)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Post("/sign-out", authHandler.SignOut)
			r.Get("/session", authHandler.Session)
		})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Post("/", profileHandler.UpsertProfile)
		})

		r.Route("/api/nutrition/daily", func(r chi.Router) {
			r.Get("/", nutritionHandler.GetDaily)
			r.Post("/", nutritionHandler.LogDaily)
		})

		r.Route("/api/meal-plans", func(r chi.Router) {
			r.Get("/", mealPlanHandler.ListMealPlans)
			r.Post("/", mealPlanHandler.CreateMealPlan)
			r.Put("/", mealPlanHandler.UpdateMealPlan)
			r.Delete("/", mealPlanHandler.DeleteMealPlan)
		})

		r.Route("/api/chat-history", func(r chi.Router) {
			r.Get("/", chatHandler.ListHistory)
			r.Post("/", chatHandler.AppendHistory)
		})

		// POST /api/chat - コーチへの質問（コーチ専用レート制限を追加）
		r.With(deps.RateLimiter.CoachMiddleware()).Post("/api/chat", chatHandler.Ask)

		r.Route("/api/achievements", func(r chi.Router) {
			r.Get("/", achievementHandler.ListAchievements)
			r.Post("/", achievementHandler.RecordAchievement)
		})

		r.Get("/api/dashboard", dashboardHandler.GetDashboard)

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, model.NewNotFoundError(model.ErrCodeNotFound, "Route not found"))
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler はDBへの疎通を確認する。checkerがnilの場合は常に200を返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
