package flags

import (
	"context"

	"github.com/rs/zerolog/log"
)

// FlagTransactionDispute gates the transaction-dispute tool.
const FlagTransactionDispute = "transaction_dispute"

// Source reports the raw state of a named feature flag.
type Source interface {
	State(ctx context.Context, flag string) (bool, error)
}

// Oracle evaluates feature flags with a fail-closed policy: any error from
// the Source reads as disabled. The polarity is deliberate and must not be
// flipped. Flags are evaluated fresh on every call, never cached.
type Oracle struct {
	source Source
}

func NewOracle(source Source) *Oracle {
	return &Oracle{source: source}
}

func (o *Oracle) Enabled(ctx context.Context, flag string) bool {
	if o == nil || o.source == nil {
		return false
	}
	enabled, err := o.source.State(ctx, flag)
	if err != nil {
		log.Warn().Err(err).Str("flag", flag).Msg("flag lookup failed, treating as disabled")
		return false
	}
	return enabled
}
