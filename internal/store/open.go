package store

import (
	"fmt"

	"github.com/spacesedan/sentidash/internal/clients"
)

// Open builds the store for backend ("memory" or "valkey"). The returned
// close func releases any connection it opened.
func Open(backend string, opts clients.ValkeyOptions, sessionID string) (ResultStore, func(), error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), func() {}, nil
	case "valkey":
		vc, err := clients.InitValkey(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("[Store] failed to connect to valkey: %w", err)
		}
		return NewValkeyStore(vc, sessionID), vc.Close, nil
	default:
		return nil, nil, fmt.Errorf("[Store] unknown backend %q", backend)
	}
}
