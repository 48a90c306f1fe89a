package qrcode

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec("")
	for _, id := range []string{"c1", "client_1712743200000_k3j9x2a", "with:colons", " spaced ", "ünïcode"} {
		payload := c.Encode(id)
		got, ok := c.Decode(payload)
		require.True(t, ok, id)
		assert.Equal(t, id, got)
	}
	assert.Equal(t, "swimfit:client:c1", c.Encode("c1"))
}

func TestCodecRejectsForeignPayloads(t *testing.T) {
	c := NewCodec("swimfit")
	for _, payload := range []string{
		"",
		"swimfit:client:",
		"c1",
		"SWIMFIT:client:c1",
		"other:client:c1",
		" swimfit:client:c1",
		`{"clientId":"c1"}`,
	} {
		_, ok := c.Decode(payload)
		assert.False(t, ok, payload)
	}
}

func TestCodecNamespace(t *testing.T) {
	c := NewCodec("poolside")
	assert.Equal(t, "poolside:client:c9", c.Encode("c9"))
	_, ok := NewCodec("swimfit").Decode(c.Encode("c9"))
	assert.False(t, ok)
}

func TestGenerateDataURL(t *testing.T) {
	g := NewGenerator(NewCodec(""), nil)
	id, err := g.Generate(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "swimfit:client:c1", id.Payload)
	require.True(t, strings.HasPrefix(id.Image, "data:image/png;base64,"))

	raw, err := RenderPNG(id.Payload)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, ImageSize, cfg.Width)
	assert.Equal(t, ImageSize, cfg.Height)
}

type recordingSink struct {
	got map[string][]byte
	err error
}

func (s *recordingSink) Put(_ context.Context, clientID string, png []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.got[clientID] = png
	return PublicURL("qr-bucket", ObjectName(clientID)), nil
}

func TestGenerateUploads(t *testing.T) {
	sink := &recordingSink{got: map[string][]byte{}}
	g := NewGenerator(NewCodec(""), sink)

	id, err := g.Generate(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/qr-bucket/qrcodes/c1.png", id.Image)
	assert.NotEmpty(t, sink.got["c1"])

	sink.err = errors.New("denied")
	_, err = g.Generate(context.Background(), "c2")
	assert.Error(t, err)
}
