package monitoring

import (
	"context"
	"time"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/users"
)

type Service interface {
	// Evaluate returns the card of a user, using the cached snapshot of its
	// device when available.
	Evaluate(ctx context.Context, userId string) (*Card, error)
	// Refresh fetches fresh readings and records an alert when the overall
	// status of the user worsens.
	Refresh(ctx context.Context, userId string) (*Card, error)
	Dashboard(ctx context.Context, filter DashboardFilter) ([]Card, error)
}

// Card is what the facility staff sees for one user.
type Card struct {
	User          *users.User
	Device        *devices.Device
	Profile       health.Profile
	Snapshot      health.Snapshot
	Evaluation    health.Evaluation
	EvaluatedTime time.Time
	// Error is set when readings could not be fetched for the card
	Error string
}

type DashboardFilter struct {
	MinStatus *health.Status
	Search    *string
	Room      *string
}

// SortCards orders cards worst status first, then by user name.
func SortCards(cards []Card) {
	sortCards(cards)
}
