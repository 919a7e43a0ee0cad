package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFields(t *testing.T) {
	data := []byte(`{ "doi" : "10.1/a",` + "\n" + `"score":1.50, "tags": ["x", {"y": 1}] }`)

	f, err := indexFields(data)
	require.NoError(t, err)

	assert.Equal(t, `"10.1/a"`, string(f.values["doi"]))
	assert.Equal(t, `1.50`, string(f.values["score"]))
	assert.Equal(t, `["x", {"y": 1}]`, string(f.values["tags"]))
	assert.Equal(t, len(data)-1, f.closing)

	for name, s := range f.spans {
		assert.Equal(t, string(f.values[name]), string(data[s.start:s.end]), name)
	}
}

func TestIndexFieldsEmpty(t *testing.T) {
	for _, data := range []string{"", "  ", "null", " null\n"} {
		f, err := indexFields([]byte(data))
		require.NoError(t, err, "%q", data)
		assert.Empty(t, f.values)
		assert.Equal(t, -1, f.closing)
	}
}

func TestIndexFieldsRepeatedNameLastWins(t *testing.T) {
	f, err := indexFields([]byte(`{"doi":"a","doi":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, `"b"`, string(f.values["doi"]))
	assert.Equal(t, span{start: 17, end: 20}, f.spans["doi"])
}

func TestIndexFieldsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"array", `["doi"]`, "not a JSON object"},
		{"scalar", `"doi"`, "not a JSON object"},
		{"truncated", `{"doi": "10.1/a"`, "decode properties"},
		{"truncated value", `{"doi": `, "decode properties"},
		{"trailing data", `{"doi": "10.1/a"} x`, "decode properties"},
		{"second object", `{}{}`, "trailing data"},
		{"garbage", `not json`, "decode properties"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := indexFields([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
		value string
		want  string
	}{
		{
			name:  "existing value swapped in place",
			data:  `{"title": "x",  "doi" : "doi:10.1/a" , "n": 1.0}`,
			field: "doi",
			value: `"10.1/a"`,
			want:  `{"title": "x",  "doi" : "10.1/a" , "n": 1.0}`,
		},
		{
			name:  "new name appended",
			data:  `{"title": "x" }`,
			field: "doi",
			value: `"10.1/a"`,
			want:  `{"title": "x" ,"doi":"10.1/a"}`,
		},
		{
			name:  "empty object",
			data:  `{ }`,
			field: "doi",
			value: `"10.1/a"`,
			want:  `{ "doi":"10.1/a"}`,
		},
		{
			name:  "empty text",
			data:  ``,
			field: "doi",
			value: `["10.1/a"]`,
			want:  `{"doi":["10.1/a"]}`,
		},
		{
			name:  "null",
			data:  `null`,
			field: "doi",
			value: `"10.1/a"`,
			want:  `{"doi":"10.1/a"}`,
		},
		{
			name:  "repeated name replaces the last",
			data:  `{"doi":"a","doi":"b"}`,
			field: "doi",
			value: `"c"`,
			want:  `{"doi":"a","doi":"c"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := indexFields([]byte(tt.data))
			require.NoError(t, err)

			got, err := f.replace([]byte(tt.data), tt.field, []byte(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			reindexed, err := indexFields(got)
			require.NoError(t, err)
			assert.Equal(t, tt.value, string(reindexed.values[tt.field]))
		})
	}
}
