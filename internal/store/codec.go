package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/efreitasn/papertrade/internal/domain"
)

// Codec turns account records into bytes and back.
type Codec interface {
	Name() string
	Encode(a *domain.Account) ([]byte, error)
	Decode(b []byte) (*domain.Account, error)
}

// JSONCodec stores accounts as plain JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(a *domain.Account) ([]byte, error) {
	return json.Marshal(a)
}

func (JSONCodec) Decode(b []byte) (*domain.Account, error) {
	var a domain.Account
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	if a.Portfolio == nil {
		a.Portfolio = make(map[string]*domain.Position)
	}
	return &a, nil
}

// ObscuredCodec stores accounts as base64-encoded JSON. The output is
// opaque to a casual reader but anyone can reverse it: it provides no
// confidentiality.
type ObscuredCodec struct{}

func (ObscuredCodec) Name() string { return "obscured" }

func (ObscuredCodec) Encode(a *domain.Account) ([]byte, error) {
	raw, err := JSONCodec{}.Encode(a)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (ObscuredCodec) Decode(b []byte) (*domain.Account, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(raw, b)
	if err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return JSONCodec{}.Decode(raw[:n])
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSONCodec{}, nil
	case "obscured":
		return ObscuredCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q, must be one of: json, obscured", name)
}
