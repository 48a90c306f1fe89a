// Package qrcode turns client ids into scannable payloads and QR images.
package qrcode

import "strings"

const DefaultNamespace = "swimfit"

// Codec maps a client id to "<namespace>:client:<id>" and back.
type Codec struct {
	prefix string
}

func NewCodec(namespace string) Codec {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Codec{prefix: namespace + ":client:"}
}

func (c Codec) Encode(clientID string) string {
	return c.prefix + clientID
}

// Decode returns the client id carried by payload. It reports false for any
// payload without the exact prefix, or with nothing after it, so callers can
// fall back to other strategies.
func (c Codec) Decode(payload string) (string, bool) {
	id, ok := strings.CutPrefix(payload, c.prefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
