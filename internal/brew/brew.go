package brew

import (
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// View is the full state of an open brew.
type View struct {
	ID            string             `json:"id"`
	RecipeID      string             `json:"recipeId"`
	RecipeName    string             `json:"recipeName"`
	OwnerID       string             `json:"ownerId,omitempty"`
	TotalTime     int                `json:"totalTime"`
	Steps         []domain.Step      `json:"steps"`
	State         countdown.Snapshot `json:"state"`
	CurrentStep   *domain.Step       `json:"currentStep,omitempty"`
	NextStep      *domain.Step       `json:"nextStep,omitempty"`
	TotalProgress float64            `json:"totalProgress"`
	Clock         string             `json:"clock"`
	OpenedAt      time.Time          `json:"openedAt"`
}

// Info is the short form used for listing and supervision.
type Info struct {
	ID           string           `json:"id"`
	RecipeID     string           `json:"recipeId"`
	RecipeName   string           `json:"recipeName"`
	OwnerID      string           `json:"ownerId,omitempty"`
	Status       countdown.Status `json:"status"`
	Elapsed      int              `json:"elapsed"`
	OpenedAt     time.Time        `json:"openedAt"`
	LastActivity time.Time        `json:"lastActivity"`
}

// Event is one committed countdown change of a brew.
type Event struct {
	BrewID string    `json:"brewId"`
	Type   string    `json:"type"`
	Brew   *View     `json:"brew"`
	At     time.Time `json:"at"`
}

type brew struct {
	id       string
	recipe   *domain.Recipe
	ownerID  string
	openedAt time.Time
	engine   *countdown.Engine
	buffer   int

	mu           sync.Mutex
	lastActivity time.Time
	subs         map[int]chan Event
	nextSub      int
	closed       bool
}

func (b *brew) touch(now time.Time) {
	b.mu.Lock()
	b.lastActivity = now
	b.mu.Unlock()
}

func (b *brew) view() *View {
	return b.viewFrom(b.engine.Snapshot())
}

func (b *brew) viewFrom(snap countdown.Snapshot) *View {
	steps := b.recipe.Steps
	v := &View{
		ID:            b.id,
		RecipeID:      b.recipe.ID,
		RecipeName:    b.recipe.Name,
		OwnerID:       b.ownerID,
		TotalTime:     b.recipe.TotalTime,
		Steps:         steps,
		State:         snap,
		TotalProgress: countdown.TotalProgress(snap.TotalTimeElapsed, b.recipe.TotalTime),
		Clock:         countdown.FormatClock(snap.TimeRemaining),
		OpenedAt:      b.openedAt,
	}
	if i := snap.CurrentStepIndex; i < len(steps) {
		cur := steps[i]
		v.CurrentStep = &cur
		if i+1 < len(steps) {
			next := steps[i+1]
			v.NextStep = &next
		}
	}
	return v
}

func (b *brew) info() Info {
	snap := b.engine.Snapshot()
	b.mu.Lock()
	last := b.lastActivity
	b.mu.Unlock()
	return Info{
		ID:           b.id,
		RecipeID:     b.recipe.ID,
		RecipeName:   b.recipe.Name,
		OwnerID:      b.ownerID,
		Status:       snap.Status,
		Elapsed:      snap.TotalTimeElapsed,
		OpenedAt:     b.openedAt,
		LastActivity: last,
	}
}

func (b *brew) subscribe() (<-chan Event, func(), bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, false
	}
	id := b.nextSub
	b.nextSub++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel, true
}

// publish delivers ev to every subscriber without blocking.
func (b *brew) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *brew) close() {
	b.engine.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
