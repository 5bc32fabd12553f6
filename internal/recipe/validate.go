package recipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Validate checks a recipe before it is stored or brewed.
func Validate(r *domain.Recipe) error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if r.CoffeeGrams < 0 || r.WaterGrams < 0 || r.Ratio < 0 {
		errs = append(errs, errors.New("amounts must not be negative"))
	}
	if r.TotalTime < 0 {
		errs = append(errs, errors.New("totalTime must not be negative"))
	}
	if err := ValidateSteps(r.Steps); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ValidateSteps rejects step sequences the countdown cannot run. An empty
// sequence is valid.
func ValidateSteps(steps []domain.Step) error {
	for i, s := range steps {
		if s.Time < 0 {
			return fmt.Errorf("step %d: time must not be negative (got %d)", i+1, s.Time)
		}
	}
	return nil
}
