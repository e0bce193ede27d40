// Package json re-exports github.com/bytedance/sonic as a drop-in
// replacement for encoding/json, adapted from the teacher's
// internal/json package: every JSON encode/decode in this module goes
// through sonic instead of the standard library, for the same reason the
// teacher does it — it's materially faster on the request/response sizes
// this pipeline handles, with an API-compatible surface.
package json

import (
	sonicjson "github.com/bytedance/sonic"
)

var (
	// Unmarshal is equivalent to encoding/json.Unmarshal.
	Unmarshal = sonicjson.ConfigDefault.Unmarshal
	// Marshal is equivalent to encoding/json.Marshal.
	Marshal = sonicjson.ConfigDefault.Marshal
	// NewEncoder is equivalent to encoding/json.NewEncoder.
	NewEncoder = sonicjson.ConfigDefault.NewEncoder
	// NewDecoder is equivalent to encoding/json.NewDecoder.
	NewDecoder = sonicjson.ConfigDefault.NewDecoder
)

// RawMessage is equivalent to encoding/json.RawMessage.
type RawMessage = sonicjson.NoCopyRawMessage
