package mangle_test

import (
	"context"
	"testing"

	"github.com/aretw0/gleaner/internal/adapters/mangle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const largerOnSmaller = "violation :- moving_disk(V1), disk_below(V2), smaller(V2,V1)."

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Rule with variables",
			in:   largerOnSmaller,
			want: "violation(/derived) :- moving_disk(V1), disk_below(V2), smaller(V2,V1).",
		},
		{
			name: "Constant argument",
			in:   "violation :- disk_below(none).",
			want: "violation(/derived) :- disk_below(/none).",
		},
		{
			name: "Negation",
			in:   "violation :- moving_disk(V1), not disk(V1).",
			want: "violation(/derived) :- moving_disk(V1), !disk(V1).",
		},
		{
			name: "Semicolon separated body",
			in:   "violation :- moving_disk(V1); disk_below(V2); smaller(V2,V1).",
			want: "violation(/derived) :- moving_disk(V1), disk_below(V2), smaller(V2,V1).",
		},
		{
			name: "Fact",
			in:   "violation.",
			want: "violation(/derived).",
		},
		{
			name: "Several rules",
			in:   "violation :- moving_disk(3).\n\nviolation :- moving_disk(none).",
			want: "violation(/derived) :- moving_disk(3).\nviolation(/derived) :- moving_disk(/none).",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mangle.Translate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := mangle.Translate("violation :- moving_disk(1)")
	assert.Error(t, err)
	_, err = mangle.Translate("  ")
	assert.Error(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	v := mangle.NewVerifier(3)
	ctx := context.Background()

	positives := [][]string{{"moving_disk(2)", "disk_below(1)"}}
	negatives := [][]string{
		{"moving_disk(1)", "disk_below(none)"},
		{"moving_disk(1)", "disk_below(2)"},
	}

	t.Run("Separating rule", func(t *testing.T) {
		res, err := v.Verify(ctx, largerOnSmaller, positives, negatives)
		require.NoError(t, err)
		assert.True(t, res.Checked)
		assert.True(t, res.Separates)
	})

	t.Run("Semicolon separated rule", func(t *testing.T) {
		res, err := v.Verify(ctx, "violation :- moving_disk(V1); disk_below(V2); smaller(V2,V1).", positives, negatives)
		require.NoError(t, err)
		assert.True(t, res.Separates)
	})

	t.Run("Too general", func(t *testing.T) {
		res, err := v.Verify(ctx, "violation :- moving_disk(V1), disk(V1).", positives, negatives)
		require.NoError(t, err)
		assert.True(t, res.Checked)
		assert.False(t, res.Separates)
		assert.Contains(t, res.Detail, "negative 0 derived")
		assert.Contains(t, res.Detail, "negative 1 derived")
	})

	t.Run("Too specific", func(t *testing.T) {
		res, err := v.Verify(ctx, "violation :- moving_disk(3).", positives, negatives)
		require.NoError(t, err)
		assert.False(t, res.Separates)
		assert.Contains(t, res.Detail, "positive 0 not derived")
	})

	t.Run("Unparseable rule", func(t *testing.T) {
		_, err := v.Verify(ctx, "violation :- ((.", positives, negatives)
		assert.Error(t, err)
	})
}
