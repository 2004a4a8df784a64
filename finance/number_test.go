package finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Number
	}{
		{"json number", `12.5`, Num(12.5)},
		{"string number", `"746"`, Num(746)},
		{"zero is present", `0`, Num(0)},
		{"null", `null`, Number{}},
		{"empty string", `""`, Number{}},
		{"garbage", `"abc"`, Number{}},
		{"object", `{"units": 1}`, Number{}},
		{"nan string", `"NaN"`, Number{}},
		{"infinity string", `"Infinity"`, Number{}},
		{"negative inf string", `"-Inf"`, Number{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNumber_MissingFieldIsInvalid(t *testing.T) {
	var v struct {
		Price Number `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &v))
	assert.False(t, v.Price.Valid)
	assert.Equal(t, 3.0, v.Price.Or(3))
}

func TestMoney_FixedPoint(t *testing.T) {
	m := decodeString[Money](t, `{"currencyCode": "INR", "units": "1500", "nanos": 500000000}`)
	assert.True(t, m.Valid())
	assert.Equal(t, "1500.5", m.Decimal().String())
	assert.Equal(t, 1500.5, m.Float())

	assert.False(t, Money{}.Valid())
	assert.Equal(t, 0.0, Money{}.Float())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 22656642.22, round2(22656642.222683627))
	assert.Equal(t, 1.24, round2(1.2351))
}
