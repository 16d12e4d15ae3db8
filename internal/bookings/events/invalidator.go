package events

import (
	"context"

	"mais/pkg/kafka"
	"mais/pkg/logger"
)

// TenantCache is the slice of the availability cache the invalidator needs.
type TenantCache interface {
	EvictTenant(tenantID string)
}

// NewCacheInvalidator returns a handler for booking events that evicts the
// tenant's cached availability. Instances also evict synchronously after
// their own writes; this handler covers writes committed by other
// instances, with the cache TTL as the backstop for lost events. Eviction
// is idempotent, so double delivery is harmless.
func NewCacheInvalidator(cache TenantCache, log *logger.Logger) kafka.MessageHandler {
	return func(_ context.Context, msg kafka.Message) error {
		tenantID := msg.GetTenantID()
		if tenantID == "" {
			tenantID = msg.Key
		}
		if tenantID == "" {
			log.Warn("Booking event without tenant identity, skipping eviction",
				"event_type", msg.GetEventType(),
				"offset", msg.Offset,
			)
			return nil
		}

		cache.EvictTenant(tenantID)
		log.Debug("Availability cache evicted",
			"tenant_id", tenantID,
			"event_type", msg.GetEventType(),
		)
		return nil
	}
}
