// Package seed はデモ用のサンプルデータを投入する。
// 同じIDのユーザーが既に存在する場合は、そのユーザーのデータを丸ごとスキップする。
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
)

// DemoPassword はデモユーザー共通のパスワード。
const DemoPassword = "password123"

// Repositories はシードが書き込むリポジトリの集合。
type Repositories struct {
	Users        repository.UserRepository
	Profiles     repository.ProfileRepository
	Nutrition    repository.NutritionRepository
	MealPlans    repository.MealPlanRepository
	Chat         repository.ChatRepository
	Achievements repository.AchievementRepository
}

// Result はシード実行の結果。
type Result struct {
	Created []string
	Skipped []string
}

// Seeder はデモデータの投入を行う。
type Seeder struct {
	repos      Repositories
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

// NewSeeder はSeederを生成する。
func NewSeeder(repos Repositories, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		repos:      repos,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Run はデモユーザーとその所有データを投入する。
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	now := s.now().UTC()
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	passwordHash := string(hash)

	result := &Result{}
	for _, demo := range demoUsers() {
		existing, err := s.repos.Users.FindByID(ctx, demo.user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user %s: %w", demo.user.ID, err)
		}
		if existing != nil {
			s.logger.Info("seed user already exists, skipping", slog.String("user_id", demo.user.ID))
			result.Skipped = append(result.Skipped, demo.user.ID)
			continue
		}

		if err := s.seedUser(ctx, demo, passwordHash, now); err != nil {
			return nil, err
		}
		s.logger.Info("seed user created", slog.String("user_id", demo.user.ID))
		result.Created = append(result.Created, demo.user.ID)
	}

	return result, nil
}

func (s *Seeder) seedUser(ctx context.Context, demo demoUser, passwordHash string, now time.Time) error {
	userID := demo.user.ID

	user := demo.user
	user.CreatedAt = now
	user.UpdatedAt = now
	account := &model.Account{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProviderID:   model.ProviderCredential,
		AccountID:    user.Email,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.CreateWithAccount(ctx, &user, account); err != nil {
		return fmt.Errorf("failed to create user %s: %w", userID, err)
	}

	profile := demo.profile
	profile.UserID = userID
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if err := s.repos.Profiles.Create(ctx, &profile); err != nil {
		return fmt.Errorf("failed to create profile for %s: %w", userID, err)
	}

	for i, n := range demo.nutrition {
		entry := n
		entry.UserID = userID
		entry.Date = now.AddDate(0, 0, i-len(demo.nutrition)+1).Format("2006-01-02")
		entry.CreatedAt = now
		if err := s.repos.Nutrition.Create(ctx, &entry); err != nil {
			return fmt.Errorf("failed to create nutrition log for %s: %w", userID, err)
		}
	}

	for _, p := range demo.mealPlans {
		plan := p
		plan.UserID = userID
		plan.CreatedAt = now
		if err := s.repos.MealPlans.Create(ctx, &plan); err != nil {
			return fmt.Errorf("failed to create meal plan for %s: %w", userID, err)
		}
	}

	msgs := make([]*model.ChatMessage, 0, len(demo.chat))
	for i, c := range demo.chat {
		msgs = append(msgs, &model.ChatMessage{
			UserID:    userID,
			Role:      c.role,
			Message:   c.message,
			CreatedAt: now.Add(time.Duration(i-len(demo.chat)) * time.Minute),
		})
	}
	if len(msgs) > 0 {
		if err := s.repos.Chat.CreateAll(ctx, msgs); err != nil {
			return fmt.Errorf("failed to create chat history for %s: %w", userID, err)
		}
	}

	for _, a := range demo.achievements {
		achievement := &model.Achievement{
			UserID:          userID,
			AchievementType: a.achievementType,
			Title:           a.title,
			Description:     a.description,
			EarnedAt:        now.AddDate(0, 0, -a.daysAgo),
		}
		if err := s.repos.Achievements.Create(ctx, achievement); err != nil {
			return fmt.Errorf("failed to create achievement for %s: %w", userID, err)
		}
	}

	return nil
}

type chatLine struct {
	role    model.ChatRole
	message string
}

type achievementSeed struct {
	achievementType string
	title           string
	description     string
	daysAgo         int
}

type demoUser struct {
	user         model.User
	profile      model.UserProfile
	nutrition    []model.DailyNutrition
	mealPlans    []model.MealPlan
	chat         []chatLine
	achievements []achievementSeed
}

// meal はmealDataの1食分。
type meal struct {
	Name     string   `json:"name"`
	Items    []string `json:"items"`
	Calories int      `json:"calories"`
	Protein  int      `json:"protein"`
	Carbs    int      `json:"carbs"`
	Fat      int      `json:"fat"`
}

func mealData(meals map[string]meal) datatypes.JSON {
	b, err := json.Marshal(meals)
	if err != nil {
		panic(fmt.Sprintf("seed: invalid meal data: %v", err))
	}
	return datatypes.JSON(b)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// week はcaloriesを基準に7日分の栄養記録を生成する。
func week(calories, protein, carbs, fat, fiber, water float64) []model.DailyNutrition {
	offsets := []float64{-120, 40, -60, 90, 0, -30, 60}
	out := make([]model.DailyNutrition, 0, len(offsets))
	for _, d := range offsets {
		ratio := (calories + d) / calories
		out = append(out, model.DailyNutrition{
			CaloriesConsumed: calories + d,
			ProteinG:         protein * ratio,
			CarbsG:           carbs * ratio,
			FatG:             fat * ratio,
			FiberG:           fiber,
			WaterMl:          water + d*2,
		})
	}
	return out
}

const firstMealDescription = "Logged your first meal! You're on your way to reaching your health goals."

func demoUsers() []demoUser {
	return []demoUser{
		{
			user: model.User{ID: "user_1", Name: "Sarah Johnson", Email: "sarah.j@example.com", EmailVerified: true},
			profile: model.UserProfile{
				Age: 32, Gender: "female", Height: 165, Weight: 78.5,
				ActivityLevel: "lightly_active", HealthGoal: "lose_weight",
				TargetWeight: floatPtr(68), DietaryPreference: "mediterranean",
				Allergies: strPtr("shellfish"),
			},
			nutrition: week(1600, 90, 180, 55, 28, 2300),
			mealPlans: []model.MealPlan{
				{
					Name:           "Mediterranean Weight Loss Plan",
					Description:    strPtr("Balanced Mediterranean diet focused on whole grains, lean proteins, and healthy fats"),
					TargetCalories: 1600,
					IsActive:       true,
					MealData: mealData(map[string]meal{
						"breakfast": {Name: "Greek Yogurt Bowl", Items: []string{"Greek yogurt", "mixed berries", "walnuts", "honey drizzle"}, Calories: 350, Protein: 20, Carbs: 45, Fat: 12},
						"lunch":     {Name: "Grilled Chicken Salad", Items: []string{"grilled chicken breast", "mixed greens", "cherry tomatoes", "feta cheese"}, Calories: 450, Protein: 35, Carbs: 25, Fat: 22},
						"dinner":    {Name: "Baked Salmon with Quinoa", Items: []string{"baked salmon fillet", "quinoa", "roasted vegetables"}, Calories: 550, Protein: 40, Carbs: 50, Fat: 20},
						"snacks":    {Name: "Hummus and Vegetables", Items: []string{"hummus", "carrots", "celery"}, Calories: 250, Protein: 8, Carbs: 30, Fat: 10},
					}),
				},
				{
					Name:           "Low-Carb Mediterranean",
					Description:    strPtr("Mediterranean approach with reduced carbs for faster weight loss"),
					TargetCalories: 1500,
					MealData: mealData(map[string]meal{
						"breakfast": {Name: "Egg White Omelet", Items: []string{"egg whites", "spinach", "mushrooms"}, Calories: 300, Protein: 25, Carbs: 15, Fat: 15},
						"lunch":     {Name: "Tuna Salad", Items: []string{"tuna", "mixed greens", "cucumber"}, Calories: 400, Protein: 35, Carbs: 20, Fat: 20},
						"dinner":    {Name: "Grilled Fish with Vegetables", Items: []string{"grilled white fish", "roasted zucchini", "asparagus"}, Calories: 550, Protein: 45, Carbs: 30, Fat: 25},
					}),
				},
			},
			chat: []chatLine{
				{model.ChatRoleUser, "Hi! I'm trying to lose weight and want to follow a Mediterranean diet. Where should I start?"},
				{model.ChatRoleAssistant, "Great choice! Focus on whole grains, lean proteins like fish and chicken, plenty of vegetables, and healthy fats from olive oil and nuts. Based on your profile, aim for around 1600 calories per day."},
				{model.ChatRoleUser, "I have a shellfish allergy, so please avoid those."},
				{model.ChatRoleAssistant, "Noted. Your plan focuses on chicken, turkey, salmon and tuna instead of shellfish."},
				{model.ChatRoleUser, "How much water should I be drinking daily?"},
				{model.ChatRoleAssistant, "Aim for at least 2-2.5 liters of water per day. Staying hydrated helps with metabolism and reduces false hunger signals."},
			},
			achievements: []achievementSeed{
				{"first_meal_logged", "First Step", firstMealDescription, 7},
				{"water_goal_met", "Hydration Hero", "Met your daily water intake goal of 2.5 liters! Staying hydrated supports your metabolism.", 3},
				{"streak_7_days", "Week Warrior", "Logged your nutrition for 7 consecutive days! Consistency is key to success.", 0},
			},
		},
		{
			user: model.User{ID: "user_2", Name: "Mike Chen", Email: "mike.chen@example.com", EmailVerified: true},
			profile: model.UserProfile{
				Age: 28, Gender: "male", Height: 178, Weight: 72,
				ActivityLevel: "very_active", HealthGoal: "build_muscle",
				TargetWeight: floatPtr(80), DietaryPreference: model.DefaultDietaryPreference,
			},
			nutrition: week(2800, 180, 320, 85, 35, 3200),
			mealPlans: []model.MealPlan{
				{
					Name:           "Muscle Building Plan",
					Description:    strPtr("High protein plan to support muscle growth"),
					TargetCalories: 2800,
					IsActive:       true,
					MealData: mealData(map[string]meal{
						"breakfast": {Name: "Protein Oatmeal", Items: []string{"oats", "whey protein", "banana", "peanut butter"}, Calories: 650, Protein: 45, Carbs: 80, Fat: 18},
						"lunch":     {Name: "Chicken and Rice Bowl", Items: []string{"chicken breast", "brown rice", "broccoli"}, Calories: 750, Protein: 55, Carbs: 90, Fat: 15},
						"dinner":    {Name: "Steak and Sweet Potato", Items: []string{"sirloin steak", "sweet potato", "green beans"}, Calories: 800, Protein: 60, Carbs: 70, Fat: 28},
						"snacks":    {Name: "Greek Yogurt and Nuts", Items: []string{"Greek yogurt", "almonds"}, Calories: 400, Protein: 25, Carbs: 20, Fat: 22},
					}),
				},
			},
			chat: []chatLine{
				{model.ChatRoleUser, "How much protein do I need to build muscle?"},
				{model.ChatRoleAssistant, "Aim for about 1.6-2.2 grams of protein per kilogram of body weight, spread across 4-5 meals."},
				{model.ChatRoleUser, "What should I eat after a workout?"},
				{model.ChatRoleAssistant, "Within two hours of training, combine protein and carbohydrates, for example chicken with rice or a protein shake with a banana."},
			},
			achievements: []achievementSeed{
				{"first_meal_logged", "First Step", firstMealDescription, 7},
				{"protein_goal_met", "Protein Pro", "Hit your daily protein goal of 180g! Keep up the great work building muscle.", 2},
				{"streak_7_days", "Week Warrior", "Logged your nutrition for 7 consecutive days! Consistency is key to success.", 0},
			},
		},
		{
			user: model.User{ID: "user_3", Name: "Emily Rodriguez", Email: "emily.r@example.com", EmailVerified: true},
			profile: model.UserProfile{
				Age: 45, Gender: "female", Height: 160, Weight: 65,
				ActivityLevel: "moderately_active", HealthGoal: "improve_health",
				DietaryPreference: "vegetarian",
				Allergies:         strPtr("dairy"),
				MedicalConditions: strPtr("type 2 diabetes"),
			},
			nutrition: week(1800, 75, 200, 60, 32, 2200),
			mealPlans: []model.MealPlan{
				{
					Name:           "Diabetes-Friendly Vegetarian Plan",
					Description:    strPtr("Low glycemic vegetarian meals without dairy"),
					TargetCalories: 1800,
					IsActive:       true,
					MealData: mealData(map[string]meal{
						"breakfast": {Name: "Chia Seed Pudding", Items: []string{"chia seeds", "almond milk", "berries"}, Calories: 350, Protein: 12, Carbs: 35, Fat: 18},
						"lunch":     {Name: "Lentil and Vegetable Soup", Items: []string{"lentils", "carrots", "celery", "spinach"}, Calories: 450, Protein: 22, Carbs: 60, Fat: 10},
						"dinner":    {Name: "Tofu Stir-Fry", Items: []string{"firm tofu", "broccoli", "bell peppers", "brown rice"}, Calories: 600, Protein: 30, Carbs: 65, Fat: 22},
					}),
				},
			},
			chat: []chatLine{
				{model.ChatRoleUser, "I have type 2 diabetes. Which carbs are best for me?"},
				{model.ChatRoleAssistant, "Choose high fiber, low glycemic carbohydrates such as lentils, oats, quinoa and non-starchy vegetables, and pair them with protein."},
				{model.ChatRoleUser, "How can I get enough protein without dairy?"},
				{model.ChatRoleAssistant, "Tofu, tempeh, lentils, chickpeas and fortified plant milks are good dairy-free protein sources."},
			},
			achievements: []achievementSeed{
				{"first_meal_logged", "First Step", firstMealDescription, 7},
				{"fiber_goal_met", "Fiber Champion", "Exceeded your daily fiber goal of 30g! High fiber intake helps manage blood sugar.", 4},
				{"balanced_meals", "Balance Master", "Maintained balanced macros for 5 consecutive days! Great work managing your diabetes.", 1},
			},
		},
	}
}

// NewGormRepositories はGORM実装のRepositoriesを生成する。
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        repository.NewGormUserRepo(db),
		Profiles:     repository.NewGormProfileRepo(db),
		Nutrition:    repository.NewGormNutritionRepo(db),
		MealPlans:    repository.NewGormMealPlanRepo(db),
		Chat:         repository.NewGormChatRepo(db),
		Achievements: repository.NewGormAchievementRepo(db),
	}
}
