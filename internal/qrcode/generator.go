package qrcode

import (
	"context"
)

// Identity is what a client record carries for check-in: the payload
// printed in the code and the image URL shown to staff.
type Identity struct {
	Payload string
	Image   string
}

type Generator struct {
	codec Codec
	sink  Sink
}

// NewGenerator returns a generator that embeds images as data URLs, or
// uploads them when sink is non-nil.
func NewGenerator(codec Codec, sink Sink) *Generator {
	return &Generator{codec: codec, sink: sink}
}

func (g *Generator) Codec() Codec {
	return g.codec
}

func (g *Generator) Generate(ctx context.Context, clientID string) (Identity, error) {
	payload := g.codec.Encode(clientID)
	png, err := RenderPNG(payload)
	if err != nil {
		return Identity{}, err
	}
	if g.sink == nil {
		return Identity{Payload: payload, Image: DataURL(png)}, nil
	}
	u, err := g.sink.Put(ctx, clientID, png)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Payload: payload, Image: u}, nil
}
