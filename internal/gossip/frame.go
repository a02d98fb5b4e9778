package gossip

import (
	"encoding/json"
	"errors"

	"github.com/golang/snappy"

	"github.com/eduledger/node/internal/chaintypes"
)

// Wire message tags, spec.md §6.
const (
	tagBlock       byte = 0x01
	tagTransaction byte = 0x02
)

var errShortFrame = errors.New("gossip: frame shorter than tag byte")

// encodeFrame builds tag + snappy-compressed canonical payload.
func encodeFrame(tag byte, payload []byte) []byte {
	compressed := snappy.Encode(nil, payload)
	out := make([]byte, 1+len(compressed))
	out[0] = tag
	copy(out[1:], compressed)
	return out
}

func decodeFrame(frame []byte) (tag byte, payload []byte, err error) {
	if len(frame) < 1 {
		return 0, nil, errShortFrame
	}
	payload, err = snappy.Decode(nil, frame[1:])
	if err != nil {
		return 0, nil, err
	}
	return frame[0], payload, nil
}

func encodeBlockFrame(b *chaintypes.Block) ([]byte, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return encodeFrame(tagBlock, payload), nil
}

func encodeTxFrame(tx chaintypes.Transaction) ([]byte, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	return encodeFrame(tagTransaction, payload), nil
}
