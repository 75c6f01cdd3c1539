// Copyright © 2018 One Concern

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Count int    `json:"count" yaml:"count" cbor:"count"`
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty" cbor:"owner,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, NameJSON, c.Name())

	c, err = ByName("YML")
	require.NoError(t, err)
	assert.Equal(t, NameYAML, c.Name())

	_, err = ByName("xml")
	require.Error(t, err)
}

func TestJSONWireFormat(t *testing.T) {
	b, err := JSON.Marshal(counter{Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, string(b))

	var c counter
	require.NoError(t, JSON.Unmarshal([]byte(`{"count":7,"owner":"me"}`), &c))
	assert.Equal(t, counter{Count: 7, Owner: "me"}, c)

	require.Error(t, JSON.Unmarshal([]byte(`{"count":`), &c))
}

func TestYAMLStrict(t *testing.T) {
	b, err := YAML.Marshal(counter{Count: 3})
	require.NoError(t, err)
	assert.Equal(t, "count: 3\n", string(b))

	var c counter
	require.Error(t, YAML.Unmarshal([]byte("count: 3\nunknown: true\n"), &c))
}

func TestCBORDeterministic(t *testing.T) {
	v := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := CBOR.Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CBOR.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	var out map[string]int
	require.NoError(t, CBOR.Unmarshal(first, &out))
	assert.Equal(t, v, out)
}
