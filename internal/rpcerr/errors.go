// Package rpcerr implements the JSON-RPC domain error taxonomy from
// spec.md §7 on top of go-ethereum/rpc's error interfaces, so the
// "-32000 plus data.error_kind" contract falls out of the library's own
// error plumbing instead of a hand-rolled envelope.
package rpcerr

import (
	"github.com/eduledger/node/internal/chaintypes"
)

const domainCode = -32000

// Domain is a JSON-RPC domain error. It implements rpc.Error (ErrorCode)
// and rpc.DataError (ErrorData) from github.com/ethereum/go-ethereum/rpc,
// which is all that library's dispatcher needs to shape the response as
// {"error":{"code":-32000,"message":...,"data":{"error_kind":...}}}.
type Domain struct {
	Kind    chaintypes.ErrorKind
	Message string
}

func (e *Domain) Error() string { return e.Message }

// ErrorCode satisfies rpc.Error.
func (e *Domain) ErrorCode() int { return domainCode }

// ErrorData satisfies rpc.DataError.
func (e *Domain) ErrorData() interface{} {
	return map[string]string{"error_kind": string(e.Kind)}
}

func New(kind chaintypes.ErrorKind, message string) *Domain {
	return &Domain{Kind: kind, Message: message}
}

func InvalidEncoding(msg string) *Domain { return New(chaintypes.ErrInvalidEncoding, msg) }
func HashMismatch(msg string) *Domain    { return New(chaintypes.ErrHashMismatch, msg) }
func BadSignature(msg string) *Domain    { return New(chaintypes.ErrBadSignature, msg) }
func AddressMismatch(msg string) *Domain { return New(chaintypes.ErrAddressMismatch, msg) }
func StaleNonce(msg string) *Domain      { return New(chaintypes.ErrStaleNonce, msg) }
func InvalidParams(msg string) *Domain   { return New(chaintypes.ErrInvalidParams, msg) }
