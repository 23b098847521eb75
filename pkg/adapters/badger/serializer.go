package badger

import (
	"encoding/json"

	"github.com/aretw0/harp/pkg/core"
)

// Serializer converts profiles to and from stored values.
type Serializer interface {
	Marshal(p core.Profile) ([]byte, error)
	Unmarshal(data []byte) (core.Profile, error)
	// Name identifies the format in introspection output.
	Name() string
}

// JSONSerializer stores profiles as JSON documents. It keeps every field,
// including the ones the text format cannot carry.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(p core.Profile) ([]byte, error) {
	return json.Marshal(p)
}

func (JSONSerializer) Unmarshal(data []byte) (core.Profile, error) {
	var p core.Profile
	err := json.Unmarshal(data, &p)
	return p, err
}

func (JSONSerializer) Name() string { return "json" }

// CodecSerializer stores profiles in the text format of a core.Codec, so the
// database holds the same documents a user would export.
type CodecSerializer struct {
	Codec core.Codec
}

func (s CodecSerializer) Marshal(p core.Profile) ([]byte, error) {
	return []byte(s.Codec.Format(p)), nil
}

func (s CodecSerializer) Unmarshal(data []byte) (core.Profile, error) {
	return s.Codec.Parse(string(data))
}

func (CodecSerializer) Name() string { return "codec" }
