package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veriledger/pkg/domain-errors"
)

// TestParseIdentity validates that identities are non-empty, bounded and normalized.
//
// Justification: identities are compared by value in every authorization gate;
// two spellings of one address must never be two principals.
func TestParseIdentity(t *testing.T) {
	t.Run("normalizes case and surrounding space", func(t *testing.T) {
		id, err := ParseIdentity("  0xAbC123 ")
		require.NoError(t, err)
		assert.Equal(t, Identity("0xabc123"), id)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseIdentity("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects inner whitespace", func(t *testing.T) {
		_, err := ParseIdentity("0xab cd")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized", func(t *testing.T) {
		_, err := ParseIdentity(strings.Repeat("a", MaxIdentifierLength+1))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseDID(t *testing.T) {
	t.Run("requires did scheme", func(t *testing.T) {
		_, err := ParseDID("veri:123")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts did", func(t *testing.T) {
		d, err := ParseDID("did:veri:abc")
		require.NoError(t, err)
		assert.Equal(t, DID("did:veri:abc"), d)
	})
}

func TestParseSessionID(t *testing.T) {
	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed", func(t *testing.T) {
		_, err := ParseSessionID("not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round trips", func(t *testing.T) {
		id := NewSessionID()
		parsed, err := ParseSessionID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.False(t, parsed.IsZero())
	})
}
