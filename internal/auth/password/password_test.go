package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheap = Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(cheap)

	encoded, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("s3cret-pass", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salt must differ per hash")
}

func TestVerify_Malformed(t *testing.T) {
	h := NewHasher(cheap)
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		_, err := h.Verify("x", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestNeedsRehash(t *testing.T) {
	old := NewHasher(cheap)
	encoded, err := old.Hash("pw")
	require.NoError(t, err)

	assert.False(t, old.NeedsRehash(encoded))
	stronger := cheap
	stronger.Time = 2
	assert.True(t, NewHasher(stronger).NeedsRehash(encoded))
	assert.True(t, old.NeedsRehash("garbage"))

	ok, err := NewHasher(stronger).Verify("pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}
