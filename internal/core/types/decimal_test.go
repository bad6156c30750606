package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityJSONIsPlainNumber(t *testing.T) {
	out, err := json.Marshal(NewQuantityFromFloat64(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5000", string(out))

	out, err = json.Marshal(NewQuantityFromInt(-3))
	require.NoError(t, err)
	assert.Equal(t, "-3.0000", string(out))
}

func TestQuantityUnmarshal(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("1.25"), &q))
	assert.Equal(t, NewQuantityFromFloat64(1.25), q)

	// String form is accepted too (some clients quote numbers).
	require.NoError(t, json.Unmarshal([]byte(`"0.5"`), &q))
	assert.Equal(t, NewQuantityFromFloat64(0.5), q)

	// Extra fractional digits are truncated to the fixed scale.
	require.NoError(t, json.Unmarshal([]byte("1.23456789"), &q))
	assert.Equal(t, Quantity(12345), q)

	require.NoError(t, json.Unmarshal([]byte("null"), &q))
	assert.True(t, q.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}

func TestQuantityArithmeticHelpers(t *testing.T) {
	q := NewQuantityFromFloat64(-1.5)
	assert.True(t, q.IsNegative())
	assert.Equal(t, NewQuantityFromFloat64(1.5), q.Abs())
	assert.Equal(t, 1.5, q.Neg().Float64())
}
