package auth

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credential(v *Verifier, userID string, authDate time.Time) string {
	values := url.Values{}
	values.Set("user_id", userID)
	values.Set("auth_date", fmt.Sprintf("%d", authDate.Unix()))
	values.Set("query_id", "q-1")
	return v.Sign(values)
}

func TestVerifier_Verify(t *testing.T) {
	verifier := NewVerifier("test-bot-token", time.Hour)

	t.Run("valid credential yields user id", func(t *testing.T) {
		cred := credential(verifier, "42", time.Now())

		userID, err := verifier.Verify(cred)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)
	})

	t.Run("tampered user id rejected", func(t *testing.T) {
		cred := credential(verifier, "42", time.Now())
		values, err := url.ParseQuery(cred)
		require.NoError(t, err)
		values.Set("user_id", "43")

		_, err = verifier.Verify(values.Encode())
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("wrong bot token rejected", func(t *testing.T) {
		other := NewVerifier("another-token", time.Hour)
		cred := credential(other, "42", time.Now())

		_, err := verifier.Verify(cred)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("stale credential rejected", func(t *testing.T) {
		cred := credential(verifier, "42", time.Now().Add(-2*time.Hour))

		_, err := verifier.Verify(cred)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		for _, cred := range []string{"", "hash=zz", "user_id=42", "%%%"} {
			_, err := verifier.Verify(cred)
			assert.ErrorIs(t, err, ErrInvalidCredential, "credential %q", cred)
		}
	})

	t.Run("zero max age skips freshness", func(t *testing.T) {
		lenient := NewVerifier("test-bot-token", 0)
		cred := credential(lenient, "42", time.Now().Add(-48*time.Hour))

		userID, err := lenient.Verify(cred)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)
	})
}
