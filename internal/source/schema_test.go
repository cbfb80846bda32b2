package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaBind(t *testing.T) {
	schema := Schema{
		{Name: "x", Required: true},
		{Name: "region", Aliases: []string{"region_acronym", "acronym"}, Required: true},
		{Name: "atlas_id"},
	}

	tests := []struct {
		name       string
		header     []string
		wantRegion string
		wantID     bool
		wantErr    bool
	}{
		{"first alias", []string{"x", "region_acronym"}, "region_acronym", false, false},
		{"second alias", []string{"acronym", "x", "atlas_id"}, "acronym", true, false},
		{"both aliases", []string{"acronym", "region_acronym", "x"}, "region_acronym", false, false},
		{"bom and spaces", []string{"\ufeffx", " acronym "}, "acronym", false, false},
		{"none present", []string{"x", "label"}, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := schema.Bind(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingColumn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRegion, b.Header("region"))
			assert.Equal(t, tt.wantID, b.Has("atlas_id"))
		})
	}
}

func TestBindingValue(t *testing.T) {
	b, err := Schema{{Name: "a", Required: true}, {Name: "b"}}.Bind([]string{"z", "a"})
	require.NoError(t, err)
	assert.Equal(t, "1", b.Value([]string{"9", " 1 "}, "a"))
	assert.Equal(t, "", b.Value([]string{"9"}, "a"))
	assert.Equal(t, "", b.Value([]string{"9", "1"}, "b"))
}

func TestParseOptionalID(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"385", 385, true},
		{"385.0", 385, true},
		{"-170", -170, true},
		{"", 0, false},
		{"nan", 0, false},
		{"12.5", 0, false},
		{"VISp", 0, false},
		{"1e300", 0, false},
		{"-1e300", 0, false},
		{"2147483648", 0, false},
		{"2147483647", 2147483647, true},
		{"3e9", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseOptionalID(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
