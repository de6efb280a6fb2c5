// Package api defines the groupledger.v1 RPC surface: request and response
// messages, Connect handler constructors and typed clients.
//
// Messages are plain structs carried as JSON, so every handler and client in
// this package installs Codec in place of Connect's protobuf codecs.
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec marshals messages as JSON. Its name makes Connect use the
// application/json content type.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

func withCodec() connect.Option {
	return connect.WithCodec(Codec{})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append(append([]connect.HandlerOption{}, opts...), withCodec())
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append(append([]connect.ClientOption{}, opts...), withCodec())
}
