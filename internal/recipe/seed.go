package recipe

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Seed stores the built-in recipes when the library is empty. It returns
// the number of recipes stored.
func (l *Library) Seed(ctx context.Context) (int, error) {
	existing, err := l.records.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		l.log.Debug("recipe library has %d recipes, skipping seed", len(existing))
		return 0, nil
	}

	recipes := []*domain.Recipe{
		v60Classic(),
		aeropressStandard(),
		chemexClassic(),
		frenchPress(),
	}
	for _, r := range recipes {
		normalize(r)
		r.Source = domain.SourceBuiltin
		r.Version = 1
		if err := l.records.Create(ctx, r); err != nil {
			return 0, fmt.Errorf("seeding %s: %w", r.ID, err)
		}
	}

	l.log.Info("seeded %d recipes", len(recipes))
	return len(recipes), nil
}

func pour(secs int, desc string) domain.Step {
	return domain.Step{Time: secs, Description: desc, IsPouring: true}
}

func stir(secs int, desc string) domain.Step {
	return domain.Step{Time: secs, Description: desc, IsStirring: true}
}

func wait(secs int, desc string) domain.Step {
	return domain.Step{Time: secs, Description: desc, IsWaiting: true}
}

func v60Classic() *domain.Recipe {
	return &domain.Recipe{
		Meta:         domain.Meta{ID: "v60-classic"},
		Name:         "Classic V60",
		Description:  "A bright, clean single cup with a 45 second bloom and two main pours.",
		GrindSetting: "medium-fine",
		CoffeeGrams:  15,
		WaterGrams:   250,
		WaterTempC:   94,
		Tags:         []string{"v60", "pour-over", "single cup"},
		Steps: []domain.Step{
			pour(10, "Pour 45g of water to bloom, wetting all the grounds"),
			wait(35, "Let the bed bloom"),
			pour(30, "Pour in slow circles up to 150g"),
			wait(10, "Let it draw down a little"),
			pour(20, "Pour up to 250g"),
			stir(5, "Give the brewer a gentle swirl"),
			wait(60, "Let it drain completely"),
		},
	}
}

func aeropressStandard() *domain.Recipe {
	return &domain.Recipe{
		Meta:         domain.Meta{ID: "aeropress"},
		Name:         "AeroPress",
		Description:  "Standard orientation, short steep, full-bodied cup.",
		GrindSetting: "fine",
		CoffeeGrams:  15,
		WaterGrams:   220,
		WaterTempC:   90,
		Tags:         []string{"aeropress", "immersion", "quick"},
		Steps: []domain.Step{
			pour(10, "Pour all 220g of water"),
			stir(10, "Stir three times and insert the plunger"),
			wait(60, "Steep"),
			stir(5, "Swirl gently to settle the bed"),
			pour(30, "Press slowly until you hear a hiss"),
		},
	}
}

func chemexClassic() *domain.Recipe {
	return &domain.Recipe{
		Meta:         domain.Meta{ID: "chemex"},
		Name:         "Chemex",
		Description:  "Two-cup Chemex with a long, even extraction.",
		GrindSetting: "medium-coarse",
		CoffeeGrams:  30,
		WaterGrams:   500,
		WaterTempC:   95,
		Tags:         []string{"chemex", "pour-over", "sharing"},
		Steps: []domain.Step{
			pour(15, "Pour 60g of water to bloom"),
			wait(30, "Let it bloom"),
			pour(45, "Pour in spirals up to 300g"),
			wait(15, "Pause"),
			pour(45, "Pour up to 500g"),
			wait(90, "Let it drain"),
		},
	}
}

func frenchPress() *domain.Recipe {
	return &domain.Recipe{
		Meta:         domain.Meta{ID: "french-press"},
		Name:         "French Press",
		Description:  "Four minute immersion with a crust break.",
		GrindSetting: "coarse",
		CoffeeGrams:  30,
		WaterGrams:   500,
		WaterTempC:   95,
		Tags:         []string{"french press", "immersion"},
		Steps: []domain.Step{
			pour(15, "Pour all 500g of water"),
			wait(225, "Steep"),
			stir(15, "Break the crust and skim the foam"),
			wait(30, "Let the fines settle"),
			pour(20, "Plunge gently and serve"),
		},
	}
}
