package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cottons-kr/appplechat-api/internal/registry"
)

// Dispatcher fans an outbound event out to a target set of members. Delivery
// is best effort and at most once per connected socket: members without a
// live connection are skipped, sends are issued concurrently, and no
// per-recipient outcome is reported back.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, reg *registry.Registry) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// Dispatch sends {event, data} to every target member with a live connection.
func (d *Dispatcher) Dispatch(event Event, data any, targetUUIDs []string) error {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}

	delivered := 0
	for _, memberUUID := range targetUUIDs {
		ch, ok := d.registry.Lookup(memberUUID)
		if !ok {
			continue
		}
		delivered++
		// One slow recipient must not delay the others.
		go ch.Send(frame)
	}

	d.logger.Debug("Dispatched event",
		slog.String("event", string(event)),
		slog.Int("targets", len(targetUUIDs)),
		slog.Int("delivered", delivered),
	)
	return nil
}
