package chat

import (
	"fmt"
	"strings"

	"calorie-chat/internal/core/calorie"
)

var countryGreetings = map[string]string{
	"lebanon": "Marhaba! 🇱🇧",
	"syria":   "Ahlan wa sahlan! 🇸🇾",
	"egypt":   "Ahlan! 🇪🇬",
	"saudi":   "Marhaba! 🇸🇦",
	"iraq":    "Ahlan bik! 🇮🇶",
}

func greetingResponse(country string) string {
	greeting, ok := countryGreetings[strings.ToLower(country)]
	if !ok {
		greeting = "Hello!"
	}

	return greeting + ` Welcome to the Arabic Food Calorie Calculator!

I can help you find calorie information for:
- Single ingredients (e.g., "apple", "rice", "chicken")
- Traditional dishes (e.g., "shawarma", "kushari", "kabsa")

You can also:
- Modify dishes: "shawarma without fries"
- Add ingredients: "falafel with extra tahini"
- Specify quantities: "200g chicken breast"

What would you like to know about?`
}

func helpResponse() string {
	return `How to use the Calorie Calculator:

1. Ask about any food:
   - "How many calories in shawarma?"
   - "Calories in kushari"
   - "Apple calories"

2. Modify dishes:
   - "Fajita without fries"
   - "Kabsa without rice"

3. Add ingredients:
   - "Shawarma with extra garlic sauce"
   - "Falafel with pickles"

4. Specify quantities:
   - "200g grilled chicken"
   - "Double portion of rice"

Just type your question and I'll help you!`
}

func calorieResponse(result *calorie.CalorieResult) string {
	foodName := "Unknown"
	if result.FoodName != "" {
		foodName = titleCase(result.FoodName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nNutrition Information:\n", foodName)
	fmt.Fprintf(&b, "- Total Calories: %d kcal\n", int(result.TotalCalories))
	fmt.Fprintf(&b, "- Total Weight: %dg\n", int(result.WeightG))

	if len(result.Ingredients) > 0 {
		b.WriteString("\nIngredients breakdown:\n")
		shown := result.Ingredients
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, ing := range shown {
			fmt.Fprintf(&b, "  - %s: %d kcal (%dg)\n", ing.Name, int(ing.Calories), int(ing.WeightG))
		}
	}

	if len(result.Modifications) > 0 {
		b.WriteString("\nModifications:\n")
		for _, mod := range result.Modifications {
			fmt.Fprintf(&b, "  - %s\n", mod)
		}
	}

	if result.IsApproximate {
		b.WriteString("\n(This is an approximate estimate)")
	}
	b.WriteString("\n\nYou can modify this dish by saying 'without [ingredient]' or 'add [ingredient]'")

	return b.String()
}

func notFoundResponse(foodName string) string {
	return fmt.Sprintf(`I couldn't find %q in my database.

This could be because:
- It's spelled differently than I expect
- It's a regional dish I don't have yet

Can you help me? Please tell me:
1. What are the main ingredients in this dish?
2. Approximately how much of each ingredient?

For example: "chicken 200g, rice 150g, onion 50g"

This will help me calculate the calories!`, foodName)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
