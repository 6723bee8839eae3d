package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"strings"
)

const (
	// TokenSecretLength is the number of characters in a token secret.
	TokenSecretLength = 40

	tokenAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenSeparator = "|"
)

// ErrMalformedToken is returned by ParseToken for input that is neither "<id>|<secret>" nor a bare secret.
var ErrMalformedToken = errors.New("malformed token")

// GenerateTokenSecret returns a random alphanumeric secret drawn from crypto/rand.
func GenerateTokenSecret() (string, error) {
	result := make([]byte, TokenSecretLength)
	for i := range result {
		ch, err := randChar(tokenAlphabet)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}
	return string(result), nil
}

// HashToken returns the hex SHA-256 digest stored in place of a token secret.
func HashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// TokenHashesEqual compares two hex digests in constant time.
func TokenHashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// FormatToken builds the plaintext handed to the client: "<id>|<secret>".
func FormatToken(id int64, secret string) string {
	return strconv.FormatInt(id, 10) + tokenSeparator + secret
}

// ParseToken splits a presented token into its record id and secret.
// A bare secret without an id prefix is accepted; hasID reports which form was used.
func ParseToken(presented string) (id int64, secret string, hasID bool, err error) {
	prefix, rest, found := strings.Cut(presented, tokenSeparator)
	if !found {
		if presented == "" {
			return 0, "", false, ErrMalformedToken
		}
		return 0, presented, false, nil
	}

	id, err = strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 || rest == "" {
		return 0, "", false, ErrMalformedToken
	}

	return id, rest, true, nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
