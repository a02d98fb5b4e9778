// Package gossip is the thin publish/subscribe boundary described in
// spec.md §4.6: it publishes newly sealed blocks and accepted
// transactions, accepts inbound ones from peers, and deduplicates by
// hash. The concrete transport (spec.md §6: an opaque stream protocol on
// TCP 8000-9000, one-byte tag framing) is gorilla/websocket; the actual
// swarm/discovery layer this would sit behind in production is out of
// scope (spec.md §1).
package gossip

import (
	"github.com/eduledger/node/internal/chaintypes"
)

// Adapter is the inbound/outbound boundary the rest of the node talks to.
type Adapter interface {
	// OnBlock is invoked when a peer gossips a block in. Inbound blocks
	// that do not extend the current tip are ignored (spec.md §4.6: no
	// fork resolution in this design).
	OnBlock(b *chaintypes.Block)
	// OnTransaction is invoked when a peer gossips a transaction in as
	// raw (uncompressed) canonical JSON; it is fed through the same
	// ingress pipeline as an RPC submission.
	OnTransaction(rawJSON []byte)

	PublishBlock(b *chaintypes.Block)
	PublishTransaction(tx chaintypes.Transaction)

	// Peers lists currently connected peer identifiers.
	Peers() []string

	Close() error
}
