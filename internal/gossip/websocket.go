package gossip

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/ledger"
	"github.com/eduledger/node/internal/txpool"
)

const dedupeCacheBytes = 8 * 1024 * 1024

var upgrader = websocket.Upgrader{
	// The web client origin is intentionally unrestricted at this layer,
	// matching the open CORS policy spec.md §6 requires of the RPC
	// surface; the swarm transport this adapter stands in for is opaque.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSAdapter is a gossip.Adapter over a flat set of websocket peer
// connections, framed per spec.md §6 and deduplicated with an in-memory
// cache keyed by hash.
type WSAdapter struct {
	ledger *ledger.Ledger
	pool   *txpool.Pool

	seen *fastcache.Cache

	mu    sync.Mutex
	peers map[uuid.UUID]*websocket.Conn
}

func NewWSAdapter(l *ledger.Ledger, p *txpool.Pool) *WSAdapter {
	return &WSAdapter{
		ledger: l,
		pool:   p,
		seen:   fastcache.New(dedupeCacheBytes),
		peers:  make(map[uuid.UUID]*websocket.Conn),
	}
}

// HandlePeer upgrades an inbound HTTP connection to a websocket stream and
// pumps frames from it until it closes.
func (a *WSAdapter) HandlePeer(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("gossip: upgrade failed", "err", err)
		return
	}
	id := uuid.New()

	a.mu.Lock()
	a.peers[id] = conn
	a.mu.Unlock()

	log.Info("gossip: peer connected", "peer", id)
	go a.readLoop(id, conn)
}

func (a *WSAdapter) readLoop(id uuid.UUID, conn *websocket.Conn) {
	defer func() {
		a.mu.Lock()
		delete(a.peers, id)
		a.mu.Unlock()
		conn.Close()
		log.Info("gossip: peer disconnected", "peer", id)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		tag, payload, err := decodeFrame(raw)
		if err != nil {
			log.Warn("gossip: dropping malformed frame", "peer", id, "err", err)
			continue
		}
		switch tag {
		case tagBlock:
			var b chaintypes.Block
			if err := json.Unmarshal(payload, &b); err != nil {
				log.Warn("gossip: dropping malformed block frame", "peer", id, "err", err)
				continue
			}
			a.OnBlock(&b)
		case tagTransaction:
			a.OnTransaction(payload)
		default:
			log.Warn("gossip: unknown frame tag", "peer", id, "tag", tag)
		}
	}
}

// OnBlock dedupes inbound blocks by hash. A block that extends the
// current tip is merely logged: importing a foreign block's transactions
// would require mutating balances outside the mining engine's sealing
// critical section, which spec.md's lifecycle rule forbids, so full
// acceptance of inbound blocks is left unspecified here — see
// spec.md §9 and DESIGN.md.
func (a *WSAdapter) OnBlock(b *chaintypes.Block) {
	key := []byte("b:" + b.Hash)
	if a.seen.Has(key) {
		return
	}
	a.seen.Set(key, []byte{1})

	tip, ok := a.ledger.GetLatestBlock()
	extendsTip := (!ok && b.Height == 0) || (ok && b.PrevHash == tip.Hash)
	if !extendsTip {
		log.Debug("gossip: ignoring inbound block that does not extend tip", "hash", b.Hash, "height", b.Height)
		return
	}
	log.Info("gossip: observed inbound block extending tip", "hash", b.Hash, "height", b.Height)
}

// OnTransaction dedupes by the hash embedded in rawJSON and, for new
// transactions, feeds the payload through the same ingress pipeline RPC
// submissions use.
func (a *WSAdapter) OnTransaction(rawJSON []byte) {
	var probe struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(rawJSON, &probe); err == nil && probe.Hash != "" {
		key := []byte("t:" + probe.Hash)
		if a.seen.Has(key) || a.ledger.HasTransaction(probe.Hash) {
			a.seen.Set(key, []byte{1})
			return
		}
		a.seen.Set(key, []byte{1})
	}
	if _, err := a.pool.AcceptRaw(rawJSON); err != nil {
		log.Debug("gossip: rejected inbound transaction", "err", err)
	}
}

func (a *WSAdapter) PublishBlock(b *chaintypes.Block) {
	frame, err := encodeBlockFrame(b)
	if err != nil {
		log.Error("gossip: encode block frame failed", "err", err)
		return
	}
	a.broadcast(frame)
}

func (a *WSAdapter) PublishTransaction(tx chaintypes.Transaction) {
	frame, err := encodeTxFrame(tx)
	if err != nil {
		log.Error("gossip: encode transaction frame failed", "err", err)
		return
	}
	a.broadcast(frame)
}

func (a *WSAdapter) broadcast(frame []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, conn := range a.peers {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			log.Warn("gossip: broadcast to peer failed", "peer", id, "err", err)
		}
	}
}

func (a *WSAdapter) Peers() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.peers))
	for id := range a.peers {
		out = append(out, id.String())
	}
	return out
}

func (a *WSAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, conn := range a.peers {
		conn.Close()
		delete(a.peers, id)
	}
	return nil
}
