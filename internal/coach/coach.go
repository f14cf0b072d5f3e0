// Package coach はキーワードに基づく栄養相談の応答を提供する。
// 応答はメッセージのみから決まる純粋関数で、外部サービスは呼び出さない。
package coach

import "strings"

// Topic は応答を選んだルールの識別子。メトリクスのラベルにも使用する。
type Topic string

const (
	TopicProtein    Topic = "protein"
	TopicWeightLoss Topic = "weight_loss"
	TopicCarbs      Topic = "carbs"
	TopicHydration  Topic = "hydration"
	TopicMealPlan   Topic = "meal_plan"
	TopicPlantBased Topic = "plant_based"
	TopicDiabetes   Topic = "diabetes"
	TopicDefault    Topic = "default"
)

// rule はキーワードのいずれかを含むメッセージに返す応答。
type rule struct {
	topic    Topic
	keywords []string
	reply    string
}

// rules は先頭から順に評価され、最初に一致したものが採用される。
var rules = []rule{
	{
		topic:    TopicProtein,
		keywords: []string{"protein", "muscle"},
		reply:    "For muscle building, aim for 1.6-2.2g of protein per kg of body weight daily. Great sources include lean meats, fish, eggs, Greek yogurt, and legumes. Spread protein intake throughout the day for optimal muscle synthesis.",
	},
	{
		topic:    TopicWeightLoss,
		keywords: []string{"weight loss", "lose weight"},
		reply:    "Weight loss requires a caloric deficit while maintaining proper nutrition. Focus on whole foods, lean proteins, vegetables, and complex carbs. Aim for a deficit of 300-500 calories daily for sustainable loss. Stay hydrated and track your progress!",
	},
	{
		topic:    TopicCarbs,
		keywords: []string{"carb", "carbohydrate"},
		reply:    "Carbohydrates are your body's primary energy source. Choose complex carbs like whole grains, oats, quinoa, and sweet potatoes over refined options. Time carbs around workouts for best energy and recovery.",
	},
	{
		topic:    TopicHydration,
		keywords: []string{"water", "hydration"},
		reply:    "Hydration is crucial for metabolism and overall health. Aim for at least 2-2.5 liters daily, more if you're active. Water helps with digestion, nutrient absorption, and can reduce false hunger signals.",
	},
	{
		topic:    TopicMealPlan,
		keywords: []string{"meal plan", "diet plan"},
		reply:    "A good meal plan should align with your goals, dietary preferences, and lifestyle. I can help create a personalized plan! Could you tell me more about your health goals and any dietary restrictions?",
	},
	{
		topic:    TopicPlantBased,
		keywords: []string{"vegetarian", "vegan"},
		reply:    "Plant-based diets can be very healthy! Focus on varied protein sources like legumes, tofu, tempeh, quinoa, and nuts. Ensure adequate B12, iron, and omega-3s. Consider fortified foods or supplements for optimal nutrition.",
	},
	{
		topic:    TopicDiabetes,
		keywords: []string{"diabetes"},
		reply:    "Managing diabetes through diet involves controlling carb portions, choosing low glycemic foods, and eating regular meals. Focus on fiber-rich foods, lean proteins, and healthy fats. Monitor blood sugar and work with your healthcare team.",
	},
}

// DefaultReply はどのルールにも一致しなかった場合の応答。
const DefaultReply = "I'm here to help with your nutrition questions! I can provide guidance on meal planning, macronutrients, dietary preferences, weight management, and more. What specific aspect of nutrition would you like to discuss?"

// Respond はメッセージに対する応答とそのトピックを返す。
// 判定は小文字化したメッセージの部分一致で行う。
func Respond(message string) (Topic, string) {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.topic, r.reply
			}
		}
	}
	return TopicDefault, DefaultReply
}
