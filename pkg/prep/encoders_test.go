package prep

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncoder(t *testing.T, column string, classes ...string) *Encoder {
	t.Helper()
	enc, err := NewEncoder(column, classes)
	require.NoError(t, err)
	return enc
}

func TestEncoderSet_MarshalKeepsOrder(t *testing.T) {
	set := NewEncoderSet()
	set.Add(mustEncoder(t, "Stress Level", "High", "Low", "Medium"))
	set.Add(mustEncoder(t, "Mood Score", "High", "Low", "Medium"))
	set.Add(mustEncoder(t, "Screen Time Before Bed (mins)", "30–60 menit", "<30 menit", ">60 menit"))

	data, err := json.Marshal(set)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Stress Level":{"High":0,"Low":1,"Medium":2},`+
			`"Mood Score":{"High":0,"Low":1,"Medium":2},`+
			`"Screen Time Before Bed (mins)":{"30–60 menit":0,"<30 menit":1,">60 menit":2}}`,
		string(data))
}

func TestEncoderSet_RoundTrip(t *testing.T) {
	set := NewEncoderSet()
	set.Add(mustEncoder(t, "b", "x", "y"))
	set.Add(mustEncoder(t, "a", "nan", "z"))

	data, err := json.Marshal(set)
	require.NoError(t, err)

	got := NewEncoderSet()
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, []string{"b", "a"}, got.Columns())

	enc, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"nan", "z"}, enc.Classes)
	code, ok := enc.Code("z")
	assert.True(t, ok)
	assert.Equal(t, 1, code)
}

func TestEncoderSet_UnmarshalRejectsBadCodes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"gap", `{"a":{"x":0,"y":2}}`},
		{"duplicate code", `{"a":{"x":1,"y":1}}`},
		{"negative", `{"a":{"x":-1}}`},
		{"not an object", `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.data), NewEncoderSet())
			assert.Error(t, err)
		})
	}
}

func TestReadEncoders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enc.json")
	require.NoError(t, os.WriteFile(path, []byte("{\n  \"Mood Score\": {\n    \"High\": 0,\n    \"Low\": 1\n  }\n}\n"), 0o600))

	set, err := ReadEncoders(path)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	_, err = ReadEncoders(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = ReadEncoders(bad)
	assert.ErrorContains(t, err, "parse")
}
