// Package location bridges the callback-based vendor location manager to a
// one-shot promise per request.
package location

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/correlator"
	"github.com/shanshu/mapbridge/internal/model/core"
)

// Fixed rejection codes surfaced to callers.
const (
	CodeManagerNotInitialized = "manager-not-initialized"
	CodeLocationFailed        = "location-failed"
)

// ErrManagerNotInitialized is returned when no provider is configured.
var ErrManagerNotInitialized = errors.New("location manager not initialized")

// Provider is the narrow contract to the vendor location manager. The
// request is fire-and-forget; exactly one of the two callbacks fires later.
// Timeouts are the provider's own concern.
type Provider interface {
	RequestLocation(done func(core.Location), fail func(err error))
}

// Manager correlates a single outstanding location request. Like the search
// categories, a second request before the first resolves overwrites the
// pending continuation.
type Manager struct {
	provider Provider
	log      zerolog.Logger
	pending  *correlator.Correlator[core.Location]
}

// NewManager wires a manager to a provider. A nil provider is allowed:
// every request then fails immediately.
func NewManager(provider Provider, log zerolog.Logger) *Manager {
	return &Manager{
		provider: provider,
		log:      log.With().Str("component", "location").Logger(),
		pending:  correlator.New[core.Location](),
	}
}

// RequestLocation asks the provider for a single position fix with its
// reverse-geocoded address and settles the caller's promise with it.
func (m *Manager) RequestLocation(resolve func(core.Location), reject func(code, message string)) {
	if m.provider == nil {
		reject(CodeManagerNotInitialized, ErrManagerNotInitialized.Error())
		return
	}
	m.pending.Begin(resolve, reject)
	m.provider.RequestLocation(
		func(loc core.Location) {
			m.pending.FinishSuccess(loc)
		},
		func(err error) {
			msg := "location request failed"
			if err != nil {
				msg = err.Error()
			}
			m.log.Warn().Err(err).Msg("location request failed")
			m.pending.FinishFailure(CodeLocationFailed, msg)
		},
	)
}
