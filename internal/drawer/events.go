package drawer

import (
	"context"

	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
)

// Publisher delivers drawer update events to subscribers. Emission happens
// only after a successful commit and is best-effort: a failed delivery never
// fails the operation that produced it.
type Publisher interface {
	Publish(ctx context.Context, event events.DrawerUpdate)
}

const (
	eventTypeRecalculation = "Recalculation"
	eventTypeModification  = "Transaction Modification"
)
