package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Wire error codes. The server maps its sentinel errors onto these codes and
// the client maps them back, so errors.Is works across the connection.
const (
	CodeNotFound          = 404
	CodeInvalidID         = 460
	CodeInvalidData       = 461
	CodeInvalidFilter     = 462
	CodeCollectionUnknown = 463
	CodeInternal          = 500
)

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

// sentinel converts a wire error into the matching sentinel, wrapping it
// with the server's message.
func (e *rpcError) sentinel() error {
	var base error
	switch e.Code {
	case CodeNotFound:
		base = types.ErrNotFound
	case CodeInvalidID:
		base = types.ErrInvalidID
	case CodeInvalidData:
		base = types.ErrInvalidData
	case CodeInvalidFilter:
		base = types.ErrInvalidFilter
	case CodeCollectionUnknown:
		base = types.ErrCollectionUnknown
	default:
		return e
	}
	return fmt.Errorf("%s: %w", e.Message, base)
}

// ErrorCode maps a sentinel error onto its wire code. The server side of
// the protocol uses it when encoding responses.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, types.ErrInvalidID):
		return CodeInvalidID
	case errors.Is(err, types.ErrInvalidData):
		return CodeInvalidData
	case errors.Is(err, types.ErrInvalidFilter):
		return CodeInvalidFilter
	case errors.Is(err, types.ErrCollectionUnknown):
		return CodeCollectionUnknown
	default:
		return CodeInternal
	}
}

type recordParams struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id,omitempty"`
	Record     any            `json:"record,omitempty"`
	Hard       bool           `json:"hard,omitempty"`
	Filter     map[string]any `json:"filter,omitempty"`
}

type settingParams struct {
	Key      string         `json:"key,omitempty"`
	Value    any            `json:"value,omitempty"`
	Default  any            `json:"default,omitempty"`
	Defaults map[string]any `json:"defaults,omitempty"`
	Values   map[string]any `json:"values,omitempty"`
}
