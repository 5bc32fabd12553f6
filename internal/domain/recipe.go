// Package domain defines the core types and interfaces for the brewing
// companion. All other packages depend on domain; domain depends on nothing.
package domain

// Step is one timed instruction in a brewing recipe ("bloom", "pour",
// "wait"). Time is in whole seconds. The classification flags are not
// interpreted by the countdown; they are carried for presentation.
type Step struct {
	Time        int    `json:"time" yaml:"time"`
	Description string `json:"description" yaml:"description"`
	IsPouring   bool   `json:"isPouring" yaml:"isPouring"`
	IsStirring  bool   `json:"isStirring" yaml:"isStirring"`
	IsWaiting   bool   `json:"isWaiting" yaml:"isWaiting"`
}

// Recipe is a complete brewing recipe.
type Recipe struct {
	Meta

	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	BrewerID     string   `json:"brewerId,omitempty"`
	GrinderID    string   `json:"grinderId,omitempty"`
	GrindSetting string   `json:"grindSetting,omitempty"`
	CoffeeGrams  float64  `json:"coffeeGrams"`
	WaterGrams   float64  `json:"waterGrams"`
	Ratio        float64  `json:"ratio"`
	WaterTempC   int      `json:"waterTempC,omitempty"`
	TotalTime    int      `json:"totalTime"`
	Steps        []Step   `json:"steps"`
	Tags         []string `json:"tags,omitempty"`
	Source       string   `json:"source,omitempty"` // "builtin", "manual", "generated"
	OwnerID      string   `json:"ownerId,omitempty"`
	Version      int      `json:"version"`
}

// Recipe sources.
const (
	SourceBuiltin   = "builtin"
	SourceManual    = "manual"
	SourceGenerated = "generated"
)

// StepTime returns the sum of all step times in seconds.
func (r *Recipe) StepTime() int {
	total := 0
	for _, s := range r.Steps {
		total += s.Time
	}
	return total
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TotalTime   int      `json:"totalTime"`
	Tags        []string `json:"tags,omitempty"`
}

// BrewParams are the inputs handed to the recipe generator.
type BrewParams struct {
	Method      string  `json:"method"` // "v60", "aeropress", "french press", ...
	BrewerName  string  `json:"brewerName,omitempty"`
	GrinderName string  `json:"grinderName,omitempty"`
	CoffeeGrams float64 `json:"coffeeGrams"`
	WaterGrams  float64 `json:"waterGrams"`
	Roast       string  `json:"roast,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}
