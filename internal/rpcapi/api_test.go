package rpcapi

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/gossip"
	"github.com/eduledger/node/internal/ledger"
	"github.com/eduledger/node/internal/txpool"
	"github.com/eduledger/node/internal/wallet"
)

func newTestAPI(t *testing.T) (*BlockchainAPI, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	p := txpool.New(l)
	ws := gossip.NewWSAdapter(l, p)
	api := NewBlockchainAPI(l, p, ws, MiningInfoSource{Difficulty: 2, Reward: 10, Miner: "EDUminer0000000000000000000000000000000"})
	return api, l
}

func TestGetBalanceRejectsMalformedAddress(t *testing.T) {
	api, _ := newTestAPI(t)
	_, err := api.GetBalance("not-an-address")
	require.Error(t, err)
}

func TestGetBalanceReturnsZeroForUnknown(t *testing.T) {
	api, _ := newTestAPI(t)
	addr := wallet.Derive("nobody").Address
	bal, err := api.GetBalance(string(addr))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
}

func TestSendTransactionHappyPath(t *testing.T) {
	api, l := newTestAPI(t)
	w := wallet.Derive("api sender")
	to := wallet.Derive("api recipient").Address

	tx := chaintypes.Transaction{From: w.Address, To: to, Amount: 1, Nonce: 1, Timestamp: 1}
	tx.Hash = tx.RecomputeHash()
	tx.Signature = wallet.SignHex(w.PrivateKey, tx.CanonicalUnsigned())
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	res, err := api.SendTransaction(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, tx.Hash, res.TxHash)
	assert.Equal(t, string(chaintypes.StatusPending), res.Status)
	assert.Equal(t, 1, l.MempoolSize())
}

func TestGetTransactionReturnsNilForUnknown(t *testing.T) {
	api, _ := newTestAPI(t)
	view, err := api.GetTransaction("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestGetBlockByHeightReturnsNilBeforeGenesis(t *testing.T) {
	api, _ := newTestAPI(t)
	b, err := api.GetBlockByHeight(0)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestGetMiningInfoReflectsLedgerState(t *testing.T) {
	api, l := newTestAPI(t)
	l.Credit("EDUsomeone0000000000000000000000000000000", 1)
	info, err := api.GetMiningInfo()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Difficulty)
	assert.Equal(t, uint64(10), info.Reward)
	assert.Equal(t, int64(-1), info.Height)
}

func TestCreditBalanceAppliesDirectly(t *testing.T) {
	api, l := newTestAPI(t)
	addr := wallet.Derive("voucher recipient").Address
	ok, err := api.CreditBalance(string(addr), 500)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(500), l.GetBalance(addr))
}
