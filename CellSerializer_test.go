package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellBinarySerializer(t *testing.T) {
	serializer := NewCellBinarySerializer()

	t.Run("round-trip", func(t *testing.T) {
		cases := []struct {
			name   string
			ref    string
			value  string
			result string
		}{
			{"formula-cell", "B2", "=A1+1", "2"},
			{"literal-cell", "A1", "1", "1"},
			{"text-cell", "C10", "hello world", "hello world"},
			{"empty-result", "D4", "=Z99", ""},
			{"unicode-content", "E5", "=\"日本語\"", "日本語"},
			{"empty-everything", "", "", ""},
		}

		for _, testCase := range cases {
			t.Run(testCase.name, func(t *testing.T) {
				data := serializer.Marshal(testCase.ref, testCase.value, testCase.result)

				ref, value, result, err := serializer.Unmarshal(data)
				assert.NoError(t, err)
				assert.Equal(t, testCase.ref, ref)
				assert.Equal(t, testCase.value, value)
				assert.Equal(t, testCase.result, result)
			})
		}
	})

	t.Run("truncated-input", func(t *testing.T) {
		full := serializer.Marshal("B2", "=A1+1", "2")

		t.Run("too-short-for-ref-length", func(t *testing.T) {
			_, _, _, err := serializer.Unmarshal([]byte{0x01})
			assert.ErrorIs(t, err, SerializerError)
		})

		t.Run("ref-cut-off", func(t *testing.T) {
			_, _, _, err := serializer.Unmarshal(full[:3])
			assert.ErrorIs(t, err, SerializerError)
		})

		t.Run("value-cut-off", func(t *testing.T) {
			_, _, _, err := serializer.Unmarshal(full[:7])
			assert.ErrorIs(t, err, SerializerError)
		})

		t.Run("empty-input", func(t *testing.T) {
			_, _, _, err := serializer.Unmarshal(nil)
			assert.ErrorIs(t, err, SerializerError)
		})
	})
}
