// Package codec implements the reversible payload encoding of the
// telemetry link: JSON wrapped in base64, with a byte-sum checksum
// computed over the unencoded bytes.
package codec

import (
	"encoding/base64"
	"fmt"

	json "github.com/goccy/go-json"

	"firestige.xyz/strix/internal/core"
)

// Encode serializes telemetry to its wire payload and returns the
// matching checksum.
func Encode(t core.Telemetry) (payload string, checksum uint32, err error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", 0, fmt.Errorf("encode telemetry: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), core.Checksum(raw), nil
}

// DecodeRaw reverses the text encoding and returns the unencoded
// payload bytes the checksum is defined over.
func DecodeRaw(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPayloadMalformed, err)
	}
	return raw, nil
}

// Decode reverses Encode.
func Decode(payload string) (core.Telemetry, error) {
	raw, err := DecodeRaw(payload)
	if err != nil {
		return core.Telemetry{}, err
	}
	var t core.Telemetry
	if err := json.Unmarshal(raw, &t); err != nil {
		return core.Telemetry{}, fmt.Errorf("%w: %v", core.ErrPayloadMalformed, err)
	}
	return t, nil
}
