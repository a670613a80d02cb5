package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBankLoads(t *testing.T) {
	qs, err := Default()
	require.NoError(t, err)
	require.Len(t, qs, 8)

	for i, q := range qs {
		assert.Equal(t, i+1, q.Order, "questions must be in play order")
		assert.NotEmpty(t, q.CorrectLetter(), "question %d has no correct option", q.ID)
	}

	// Bet caps shrink as the game tightens: normal 3, reduced 2, final 1.
	assert.Equal(t, 3, qs[0].MaxOptionsToBet)
	assert.Equal(t, 2, qs[3].MaxOptionsToBet)
	assert.Equal(t, "final", qs[7].Type)
	assert.Equal(t, 1, qs[7].MaxOptionsToBet)
}

func TestValidateRejectsBadBanks(t *testing.T) {
	cases := []struct {
		name string
		qs   []Question
	}{
		{name: "empty bank", qs: nil},
		{
			name: "no correct option",
			qs: []Question{{ID: 1, MaxOptionsToBet: 1, Options: []Option{
				{Letter: "A"}, {Letter: "B"},
			}}},
		},
		{
			name: "two correct options",
			qs: []Question{{ID: 1, MaxOptionsToBet: 1, Options: []Option{
				{Letter: "A", IsCorrect: true}, {Letter: "B", IsCorrect: true},
			}}},
		},
		{
			name: "cap larger than option count",
			qs: []Question{{ID: 1, MaxOptionsToBet: 3, Options: []Option{
				{Letter: "A", IsCorrect: true}, {Letter: "B"},
			}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, Validate(tc.qs))
		})
	}
}
