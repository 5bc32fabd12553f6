package domain

import "context"

// RecipeSource provides recipes by ID.
type RecipeSource interface {
	Get(ctx context.Context, id string) (*Recipe, error)
}

// RecipeGenerator turns brew parameters into an ordered step sequence.
// Implementations make a single attempt; callers decide about retries.
type RecipeGenerator interface {
	Generate(ctx context.Context, params BrewParams) (*Recipe, error)
}

// IdentityProvider exposes the signed-in user and sign-in/out operations.
type IdentityProvider interface {
	SignIn(ctx context.Context, name, email string) (token string, user *User, err error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*User, error)
}

// Notifier delivers messages to the user. Implementations can write to
// a terminal, play a chime, or fan out to several notifiers.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
