package attendance

import (
	"encoding/json"
	"fmt"
	"strings"

	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/qrcode"
	"swimfit/backend/internal/utils"
)

// ScanMethod records how a scanned payload was matched to a client.
type ScanMethod string

const (
	ScanManual    ScanMethod = "manual"
	ScanCodec     ScanMethod = "qr"
	ScanJSON      ScanMethod = "json"
	ScanID        ScanMethod = "id"
	ScanIDFold    ScanMethod = "id-case-insensitive"
	ScanIDPartial ScanMethod = "id-partial"
	ScanName      ScanMethod = "name"
)

const (
	minPartialID = 6
	minName      = 4
)

// ScanResolver turns whatever a scanner produced into a client id. Payloads
// in the codec format are trusted as they are. Anything else is read as a
// JSON object carrying clientId or id, or as a bare string, and matched
// against the roster.
type ScanResolver struct {
	codec qrcode.Codec
}

func NewScanResolver(codec qrcode.Codec) *ScanResolver {
	return &ScanResolver{codec: codec}
}

func (r *ScanResolver) Resolve(payload string, clients []client.Client) (string, ScanMethod, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", "", fmt.Errorf("%w: empty scan payload", ErrBadRequest)
	}
	if id, ok := r.codec.Decode(payload); ok {
		return id, ScanCodec, nil
	}

	candidate, fromJSON := jsonClientID(payload)
	if !fromJSON {
		candidate = payload
	}
	id, method, ok := match(candidate, clients)
	if !ok {
		return "", "", fmt.Errorf("%w: no client matches scanned code", ErrNotFound)
	}
	if fromJSON && method == ScanID {
		method = ScanJSON
	}
	return id, method, nil
}

func jsonClientID(payload string) (string, bool) {
	if !strings.HasPrefix(payload, "{") {
		return "", false
	}
	var body struct {
		ClientID string `json:"clientId"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return "", false
	}
	if id := strings.TrimSpace(body.ClientID); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(body.ID); id != "" {
		return id, true
	}
	return "", false
}

// match tries progressively looser rules. The partial and name rules only
// accept a single hit.
func match(candidate string, clients []client.Client) (string, ScanMethod, bool) {
	for _, c := range clients {
		if c.ID == candidate {
			return c.ID, ScanID, true
		}
	}
	for _, c := range clients {
		if strings.EqualFold(c.ID, candidate) {
			return c.ID, ScanIDFold, true
		}
	}
	if len(candidate) >= minPartialID {
		lower := strings.ToLower(candidate)
		if id, ok := unique(clients, func(c client.Client) bool {
			return strings.Contains(strings.ToLower(c.ID), lower)
		}); ok {
			return id, ScanIDPartial, true
		}
	}
	if folded := utils.Fold(candidate); len(folded) >= minName {
		if id, ok := unique(clients, func(c client.Client) bool {
			return strings.Contains(utils.Fold(c.Name), folded)
		}); ok {
			return id, ScanName, true
		}
	}
	return "", "", false
}

func unique(clients []client.Client, pred func(client.Client) bool) (string, bool) {
	found := ""
	for _, c := range clients {
		if !pred(c) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = c.ID
	}
	return found, found != ""
}
