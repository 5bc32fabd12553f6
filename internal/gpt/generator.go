package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// ErrInvalidGeneration is returned when the model's reply cannot be turned
// into a runnable recipe.
var ErrInvalidGeneration = fmt.Errorf("%w: invalid reply", domain.ErrGenerationFailed)

// Bounds on generated numbers. No brewing step runs longer than a day, and
// water above boiling is a model error.
const (
	maxStepSeconds = 24 * 60 * 60
	maxWaterTempC  = 100
)

// Compile-time interface check.
var _ domain.RecipeGenerator = (*Generator)(nil)

// Chatter is the part of Client the generator needs.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Generator turns brew parameters into a recipe with one chat call. It
// never retries; a failed or malformed reply is returned as an error.
type Generator struct {
	client Chatter
	log    *logger.Logger
}

// NewGenerator creates a recipe generator backed by the given client.
func NewGenerator(client Chatter, log *logger.Logger) *Generator {
	return &Generator{client: client, log: log}
}

// generatedStep mirrors domain.Step with a float time so fractional
// seconds can be detected instead of silently truncated.
type generatedStep struct {
	Time        float64 `mapstructure:"time"`
	Description string  `mapstructure:"description"`
	IsPouring   bool    `mapstructure:"isPouring"`
	IsStirring  bool    `mapstructure:"isStirring"`
	IsWaiting   bool    `mapstructure:"isWaiting"`
}

type generatedRecipe struct {
	Name         string          `mapstructure:"name"`
	Description  string          `mapstructure:"description"`
	GrindSetting string          `mapstructure:"grindSetting"`
	WaterTempC   float64         `mapstructure:"waterTempC"`
	CoffeeGrams  float64         `mapstructure:"coffeeGrams"`
	WaterGrams   float64         `mapstructure:"waterGrams"`
	Steps        []generatedStep `mapstructure:"steps"`
}

// Generate asks the model for a recipe. The returned recipe is complete
// and validated but not stored.
func (g *Generator) Generate(ctx context.Context, params domain.BrewParams) (*domain.Recipe, error) {
	messages := g.buildMessages(params)
	raw, err := g.client.Chat(ctx, messages)
	if err != nil {
		g.log.Warn("gpt: generation request failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	recipe, err := decodeRecipe(stripCodeFence(raw))
	if err != nil {
		g.log.Error("gpt: failed to decode recipe: %v\nraw: %s", err, truncate(raw, 400))
		return nil, err
	}

	if recipe.Name == "" {
		recipe.Name = defaultName(params)
	}
	if recipe.CoffeeGrams == 0 {
		recipe.CoffeeGrams = params.CoffeeGrams
	}
	if recipe.WaterGrams == 0 {
		recipe.WaterGrams = params.WaterGrams
	}
	recipe.Source = domain.SourceGenerated
	recipe.Tags = appendTag(recipe.Tags, "generated")
	if m := strings.TrimSpace(strings.ToLower(params.Method)); m != "" {
		recipe.Tags = appendTag(recipe.Tags, m)
	}

	g.log.Info("gpt: generated %q (%d steps, %ds)", recipe.Name, len(recipe.Steps), recipe.StepTime())
	return recipe, nil
}

// decodeRecipe parses the reply through mapstructure with weak typing so
// numbers sent as strings ("30") are accepted.
func decodeRecipe(raw string) (*domain.Recipe, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidGeneration, err)
	}

	var out generatedRecipe
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeneration, err)
	}

	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidGeneration)
	}

	var errs []error
	steps := make([]domain.Step, 0, len(out.Steps))
	for i, s := range out.Steps {
		switch {
		case s.Time < 0:
			errs = append(errs, fmt.Errorf("step %d: negative time %v", i+1, s.Time))
		case s.Time > maxStepSeconds:
			errs = append(errs, fmt.Errorf("step %d: time %v exceeds %d seconds", i+1, s.Time, maxStepSeconds))
		case s.Time != math.Trunc(s.Time):
			errs = append(errs, fmt.Errorf("step %d: time %v is not a whole number of seconds", i+1, s.Time))
		}
		steps = append(steps, domain.Step{
			Time:        int(s.Time),
			Description: strings.TrimSpace(s.Description),
			IsPouring:   s.IsPouring,
			IsStirring:  s.IsStirring,
			IsWaiting:   s.IsWaiting,
		})
	}
	if out.WaterTempC < 0 || out.WaterTempC > maxWaterTempC {
		errs = append(errs, fmt.Errorf("water temperature %v°C out of range", out.WaterTempC))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGeneration, errors.Join(errs...))
	}

	r := &domain.Recipe{
		Name:         strings.TrimSpace(out.Name),
		Description:  strings.TrimSpace(out.Description),
		GrindSetting: out.GrindSetting,
		WaterTempC:   int(math.Round(out.WaterTempC)),
		CoffeeGrams:  out.CoffeeGrams,
		WaterGrams:   out.WaterGrams,
		Steps:        steps,
	}
	r.TotalTime = r.StepTime()
	return r, nil
}

// stripCodeFence removes ```json ... ``` wrappers that LLMs love to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence line.
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		// Remove closing fence.
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// buildMessages assembles the system prompt and the brew parameters.
func (g *Generator) buildMessages(p domain.BrewParams) []Message {
	return []Message{
		TextMessage(RoleSystem, PromptGenerate),
		TextMessage(RoleUser, describeParams(p)),
	}
}

func describeParams(p domain.BrewParams) string {
	var b strings.Builder
	b.WriteString("[Brew Parameters]\n")
	fmt.Fprintf(&b, "Method: %s\n", orUnknown(p.Method))
	if p.BrewerName != "" {
		fmt.Fprintf(&b, "Brewer: %s\n", p.BrewerName)
	}
	if p.GrinderName != "" {
		fmt.Fprintf(&b, "Grinder: %s\n", p.GrinderName)
	}
	if p.CoffeeGrams > 0 {
		fmt.Fprintf(&b, "Coffee: %gg\n", p.CoffeeGrams)
	}
	if p.WaterGrams > 0 {
		fmt.Fprintf(&b, "Water: %gg\n", p.WaterGrams)
	}
	if p.Roast != "" {
		fmt.Fprintf(&b, "Roast: %s\n", p.Roast)
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", p.Notes)
	}
	return b.String()
}

func defaultName(p domain.BrewParams) string {
	if p.Method == "" {
		return "Generated recipe"
	}
	return "Generated " + p.Method
}

func orUnknown(s string) string {
	if s == "" {
		return "any manual method"
	}
	return s
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
