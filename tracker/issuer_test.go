package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_Issue_Length(t *testing.T) {
	issuer := NewIssuer(nil)

	id, err := issuer.Issue()
	require.NoError(t, err)
	assert.Len(t, id, 8)
}

func TestIssuer_Issue_Unique(t *testing.T) {
	issuer := NewIssuer(nil)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := issuer.Issue()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIssuer_Issue_RetriesOnCollision(t *testing.T) {
	issued := map[string]bool{"aaaaaaaa": true, "bbbbbbbb": true}
	issuer := NewIssuer(func(id string) bool { return issued[id] })

	sequence := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}
	calls := 0
	issuer.newID = func() string {
		id := sequence[calls]
		calls++
		return id
	}

	id, err := issuer.Issue()
	require.NoError(t, err)
	assert.Equal(t, "cccccccc", id)
	assert.Equal(t, 3, calls)
}

func TestIssuer_Issue_GivesUpAfterBoundedRetries(t *testing.T) {
	issuer := NewIssuer(func(string) bool { return true })

	calls := 0
	issuer.newID = func() string {
		calls++
		return "collided"
	}

	_, err := issuer.Issue()
	require.Error(t, err)
	assert.Equal(t, maxIssueAttempts, calls)
}
