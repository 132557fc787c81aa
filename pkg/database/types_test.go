package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntArray_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  IntArray
	}{
		{"nil", nil, nil},
		{"json bytes", []byte("[101,202]"), IntArray{101, 202}},
		{"json string", "[7]", IntArray{7}},
		{"postgres literal", "{1, 2,3}", IntArray{1, 2, 3}},
		{"postgres empty", "{}", IntArray{}},
		{"single value", "42", IntArray{42}},
		{"empty string", "", IntArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got IntArray
			require.NoError(t, got.Scan(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntArray_ScanErrors(t *testing.T) {
	var a IntArray
	assert.Error(t, a.Scan(3.14))
	assert.Error(t, a.Scan("{1,x}"))
	assert.Error(t, a.Scan("abc"))
}

func TestIntArray_Value(t *testing.T) {
	v, err := IntArray{3, 4}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,4]", v)

	v, err = IntArray(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDialector_UnsupportedDriver(t *testing.T) {
	_, err := Dialector(&Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNew_SQLiteInMemory(t *testing.T) {
	db, err := New(&Config{Driver: "sqlite", FilePath: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
