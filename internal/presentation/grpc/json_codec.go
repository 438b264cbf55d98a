package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content subtype clients select to call ChurnService,
// e.g. grpc.CallContentSubtype(CodecName).
const CodecName = "json"

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// wireCodec encodes the plain-struct ChurnService messages with encoding/json.
// Generated protobuf messages, such as the health service's, go through
// protojson so their well-known types keep the canonical JSON mapping.
type wireCodec struct{}

var protoUnmarshal = protojson.UnmarshalOptions{DiscardUnknown: true}

func (wireCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// Unmarshal treats an empty payload as an empty object, which is how
// protobuf clients send messages with no fields set.
func (wireCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	if m, ok := v.(proto.Message); ok {
		return protoUnmarshal.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func (wireCodec) Name() string {
	return CodecName
}
