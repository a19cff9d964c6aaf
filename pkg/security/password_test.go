package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("recorder-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "recorder-pass", hashed)

	assert.NoError(t, h.Compare(hashed, "recorder-pass"))
	assert.ErrorIs(t, h.Compare(hashed, "wrong-pass"), ErrPasswordMismatch)
}

func TestBcryptHasherRejectsShortPassword(t *testing.T) {
	_, err := NewBcryptHasher(0).Hash("123")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestBcryptHasherPolicy(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", MaxPasswordLen+1))
	var policy *PolicyError
	require.ErrorAs(t, err, &policy)
	assert.Contains(t, policy.Reason, "at most 72")

	// Six CJK characters are long enough even though each is three bytes.
	_, err = h.Hash("护理记录密码")
	assert.NoError(t, err)

	assert.ErrorIs(t, h.Compare("not-a-hash", "whatever"), ErrPasswordMismatch)
}
