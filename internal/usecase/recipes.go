package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"recipe-genie/internal/integrations/mealdb"
)

const popularRecipeCount = 6

const popularPrompt = "List 6 popular home-cooking recipes from a variety of cuisines. " +
	"Respond with ONLY a JSON array, no prose and no markdown, where each element is an object with " +
	`exactly these string fields: "name", "cuisine", "description". Keep each description under 20 words.`

// RecipeSuggestion is one entry of the popular-recipes listing.
type RecipeSuggestion struct {
	Name        string `json:"name"`
	Cuisine     string `json:"cuisine"`
	Description string `json:"description"`
}

// MealFinder searches an external recipe catalogue.
type MealFinder interface {
	SearchByIngredient(ctx context.Context, ingredient string) ([]mealdb.Meal, error)
}

type RecipeService struct {
	assistant Assistant
	meals     MealFinder
}

func NewRecipeService(assistant Assistant, meals MealFinder) (*RecipeService, error) {
	if assistant == nil {
		return nil, errors.New("usecase: assistant must not be nil")
	}
	if meals == nil {
		return nil, errors.New("usecase: meal finder must not be nil")
	}
	return &RecipeService{assistant: assistant, meals: meals}, nil
}

// ListPopular asks the assistant for a short list of popular recipes. The
// assistant replies with prose fallbacks when the completion API is down;
// those do not parse as JSON and surface as an upstream error.
func (s *RecipeService) ListPopular(ctx context.Context) ([]RecipeSuggestion, error) {
	raw := s.assistant.Ask(ctx, popularPrompt)
	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, newError(ErrorUpstream, "malformed_recipe_list", err)
	}
	if len(suggestions) > popularRecipeCount {
		suggestions = suggestions[:popularRecipeCount]
	}
	return suggestions, nil
}

// SearchByIngredient looks up catalogue meals that use the ingredient.
func (s *RecipeService) SearchByIngredient(ctx context.Context, ingredient string) ([]mealdb.Meal, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, newError(ErrorInvalidInput, "empty_ingredient", nil)
	}
	meals, err := s.meals.SearchByIngredient(ctx, ingredient)
	if err != nil {
		return nil, newError(ErrorUpstream, "mealdb_error", err)
	}
	return meals, nil
}

// parseSuggestions tolerates replies that wrap the JSON array in extra text
// by slicing from the first '[' to the last ']'.
func parseSuggestions(raw string) ([]RecipeSuggestion, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON array in reply")
	}
	var suggestions []RecipeSuggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &suggestions); err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, errors.New("empty recipe list")
	}
	return suggestions, nil
}
