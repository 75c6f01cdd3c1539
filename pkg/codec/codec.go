// Copyright © 2018 One Concern

// Package codec provides serializers for structured values stored in versioned files.
package codec

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

// Codec knows how to serialize values to bytes and back
type Codec interface {
	Name() string
	Marshal(interface{}) ([]byte, error)
	Unmarshal([]byte, interface{}) error
}

const (
	// NameJSON is the name of the JSON codec
	NameJSON = "json"

	// NameYAML is the name of the YAML codec
	NameYAML = "yaml"

	// NameCBOR is the name of the CBOR codec
	NameCBOR = "cbor"
)

var (
	// JSON codec, compatible with encoding/json
	JSON Codec = jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary}

	// YAML codec
	YAML Codec = yamlCodec{}

	// CBOR codec, using core deterministic encoding
	CBOR Codec = mustCBOR()
)

// ByName returns the codec registered under some name
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case NameJSON, "":
		return JSON, nil
	case NameYAML, "yml":
		return YAML, nil
	case NameCBOR:
		return CBOR, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// Names lists the supported codecs
func Names() []string {
	return []string{NameJSON, NameYAML, NameCBOR}
}

type jsonCodec struct {
	api jsoniter.API
}

func (jsonCodec) Name() string { return NameJSON }

func (c jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return c.api.Marshal(v)
}

func (c jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return c.api.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return NameYAML }

func (yamlCodec) Marshal(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v interface{}) error {
	return yaml.UnmarshalStrict(data, v)
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func mustCBOR() Codec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{enc: enc, dec: dec}
}

func (cborCodec) Name() string { return NameCBOR }

func (c cborCodec) Marshal(v interface{}) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c cborCodec) Unmarshal(data []byte, v interface{}) error {
	return c.dec.Unmarshal(data, v)
}
