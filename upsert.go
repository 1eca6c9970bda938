package scanner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Upserter makes the store's state for an item's key converge to the
// item's value. Table Storage update rejects keys that do not exist yet,
// so the protocol is update first, then insert when the store reports the
// entity as missing. Any other failure belongs to the item, not the run.
type Upserter struct {
	store  TableStore
	logger zerolog.Logger
}

// NewUpserter creates an Upserter writing through the given store.
func NewUpserter(store TableStore, logger zerolog.Logger) *Upserter {
	return &Upserter{store: store, logger: logger}
}

// Apply writes one item, returning an error tagged with the item's key if
// neither the update nor the fallback insert succeeded.
func (u *Upserter) Apply(ctx context.Context, item TopologyItem) error {
	err := u.store.UpdateEntity(ctx, item)
	if err == nil {
		u.logger.Debug().Str("key", item.Key()).Msg("entity updated")
		return nil
	}
	if !u.store.IsNotFound(err) {
		return fmt.Errorf("update %s: %w", item.Key(), err)
	}

	u.logger.Debug().Str("key", item.Key()).Msg("entity not found, inserting")
	if err := u.store.InsertEntity(ctx, item); err != nil {
		return fmt.Errorf("insert %s: %w", item.Key(), err)
	}
	u.logger.Debug().Str("key", item.Key()).Msg("entity inserted")
	return nil
}
