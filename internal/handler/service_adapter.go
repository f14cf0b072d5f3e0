package handler

import (
	"github.com/hitoshi/nutricoach/internal/achievement"
	"github.com/hitoshi/nutricoach/internal/auth"
	"github.com/hitoshi/nutricoach/internal/chat"
	"github.com/hitoshi/nutricoach/internal/dashboard"
	"github.com/hitoshi/nutricoach/internal/mealplan"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/nutrition"
	"github.com/hitoshi/nutricoach/internal/profile"
	"github.com/hitoshi/nutricoach/internal/user"
)

// ドメインサービスはハンドラーのインターフェースをそのまま満たすため、アダプタを挟まない。
var (
	_ AuthServiceInterface        = (*auth.Service)(nil)
	_ middleware.SessionResolver  = (*auth.Service)(nil)
	_ ProfileServiceInterface     = (*profile.Service)(nil)
	_ NutritionServiceInterface   = (*nutrition.Service)(nil)
	_ MealPlanServiceInterface    = (*mealplan.Service)(nil)
	_ ChatServiceInterface        = (*chat.Service)(nil)
	_ AchievementServiceInterface = (*achievement.Service)(nil)
	_ DashboardServiceInterface   = (*dashboard.Service)(nil)
	_ UserServiceInterface        = (*user.Service)(nil)
)
