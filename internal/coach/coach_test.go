package coach

import (
	"strings"
	"testing"
)

func TestRespond_Topics(t *testing.T) {
	tests := []struct {
		message string
		want    Topic
	}{
		{"How much protein do I need?", TopicProtein},
		{"I want to build MUSCLE", TopicProtein},
		{"tips for weight loss", TopicWeightLoss},
		{"How do I lose weight fast", TopicWeightLoss},
		{"Are carbs bad?", TopicCarbs},
		{"what is a carbohydrate", TopicCarbs},
		{"How much water per day", TopicHydration},
		{"hydration tips", TopicHydration},
		{"Can you make me a meal plan?", TopicMealPlan},
		{"need a diet plan", TopicMealPlan},
		{"I'm vegetarian", TopicPlantBased},
		{"Vegan recipes?", TopicPlantBased},
		{"I have diabetes", TopicDiabetes},
		{"hello there", TopicDefault},
		{"", TopicDefault},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, reply := Respond(tt.message)
			if got != tt.want {
				t.Errorf("Respond(%q) topic = %q, want %q", tt.message, got, tt.want)
			}
			if reply == "" {
				t.Errorf("Respond(%q) reply is empty", tt.message)
			}
		})
	}
}

// TestRespond_FirstMatchWins は複数のキーワードを含む場合に先のルールが優先されることを検証する。
func TestRespond_FirstMatchWins(t *testing.T) {
	tests := []struct {
		message string
		want    Topic
	}{
		{"protein for weight loss", TopicProtein},
		{"vegan protein sources", TopicProtein},
		{"carbs and diabetes", TopicCarbs},
		{"water in my meal plan", TopicHydration},
		{"vegetarian meal plan", TopicMealPlan},
	}

	for _, tt := range tests {
		if got, _ := Respond(tt.message); got != tt.want {
			t.Errorf("Respond(%q) topic = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestRespond_ReplyText(t *testing.T) {
	_, reply := Respond("protein?")
	if !strings.HasPrefix(reply, "For muscle building, aim for 1.6-2.2g of protein") {
		t.Errorf("protein reply = %q", reply)
	}

	_, reply = Respond("good morning")
	if reply != DefaultReply {
		t.Errorf("default reply = %q, want DefaultReply", reply)
	}
}

func TestRespond_Deterministic(t *testing.T) {
	t1, r1 := Respond("Hydration advice")
	t2, r2 := Respond("Hydration advice")
	if t1 != t2 || r1 != r2 {
		t.Error("Respond should return the same result for the same input")
	}
}
