package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReferenceFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		ref, err := NewReference("RT")
		require.NoError(t, err)
		require.Len(t, ref, 8)
		require.Regexp(t, ReferencePattern, ref)
	}
}

func TestNewReferenceVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref, err := NewReference("RT")
		require.NoError(t, err)
		seen[ref] = true
	}
	// 36^6 possibilities; 200 draws colliding down to a handful would mean
	// the generator is broken.
	require.Greater(t, len(seen), 190)
}
