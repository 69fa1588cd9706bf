// Package auth turns the opaque signed credential presented by the
// web-app client into a trusted user id. The credential is a
// query-string of key=value pairs carrying user_id, auth_date and a
// hex HMAC-SHA256 hash computed by the issuing bot; everything past
// "the signature checks out" is somebody else's problem.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Verifier validates signed credentials against the configured bot
// token. maxAge bounds how old an accepted credential may be; zero
// disables the freshness check.
type Verifier struct {
	secret []byte
	maxAge time.Duration
}

func NewVerifier(botToken string, maxAge time.Duration) *Verifier {
	// The signing secret is derived from the bot token, never the raw
	// token itself, matching what the credential issuer does.
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &Verifier{secret: mac.Sum(nil), maxAge: maxAge}
}

// Verify checks the credential signature and freshness and returns the
// embedded user id. Any malformed, tampered or stale credential fails
// with ErrInvalidCredential.
func (v *Verifier) Verify(credential string) (string, error) {
	values, err := url.ParseQuery(credential)
	if err != nil {
		return "", ErrInvalidCredential
	}

	gotHash := values.Get("hash")
	userID := values.Get("user_id")
	if gotHash == "" || userID == "" {
		return "", ErrInvalidCredential
	}

	// Data-check string: every pair except the hash itself, sorted by
	// key, joined with newlines.
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	checkString := strings.Join(pairs, "\n")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(gotHash)) {
		return "", ErrInvalidCredential
	}

	if v.maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return "", ErrInvalidCredential
		}
		if time.Since(time.Unix(authDate, 0)) > v.maxAge {
			return "", ErrInvalidCredential
		}
	}

	return userID, nil
}

// Sign produces a credential for the given pairs. It lives here so
// tests and local tooling can mint valid credentials; the production
// issuer is the external bot.
func (v *Verifier) Sign(values url.Values) string {
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}
