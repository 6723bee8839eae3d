package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// Hash schemes recognized by VerifyPassword.
const (
	SchemeArgon2id = "argon2id"
	SchemeBcrypt   = "bcrypt"
)

// HashParams configures Argon2id.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams are used for every new password hash.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// HashPassword hashes a password with Argon2id and DefaultHashParams and
// returns it as a PHC string: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
func HashPassword(password string) (string, error) {
	return hashArgon2id(password, DefaultHashParams())
}

// VerifyPassword reports whether password matches encodedHash. Argon2id PHC
// strings and bcrypt hashes ($2a$, $2b$, $2y$) are both accepted.
func VerifyPassword(password, encodedHash string) (bool, error) {
	switch HashScheme(encodedHash) {
	case SchemeArgon2id:
		return verifyArgon2id(password, encodedHash)
	case SchemeBcrypt:
		return verifyBcrypt(password, encodedHash)
	default:
		return false, ErrInvalidHashFormat
	}
}

// NeedsRehash reports whether encodedHash should be replaced by a fresh
// HashPassword result: bcrypt hashes and Argon2id hashes with other parameters.
func NeedsRehash(encodedHash string) bool {
	if HashScheme(encodedHash) != SchemeArgon2id {
		return true
	}
	params, _, _, err := decodeArgon2id(encodedHash)
	if err != nil {
		return true
	}
	want := DefaultHashParams()
	return params.Memory != want.Memory ||
		params.Iterations != want.Iterations ||
		params.Parallelism != want.Parallelism ||
		params.KeyLength != want.KeyLength
}

// HashScheme names the scheme of an encoded hash, or "" if unknown.
func HashScheme(encodedHash string) string {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return SchemeArgon2id
	case strings.HasPrefix(encodedHash, "$2a$"),
		strings.HasPrefix(encodedHash, "$2b$"),
		strings.HasPrefix(encodedHash, "$2y$"):
		return SchemeBcrypt
	default:
		return ""
	}
}

func hashArgon2id(password string, p HashParams) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		SchemeArgon2id, argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	p, salt, key, err := decodeArgon2id(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func verifyBcrypt(password, encodedHash string) (bool, error) {
	// $2y$ is the same algorithm under another prefix; x/crypto only knows $2a$/$2b$.
	if rest, ok := strings.CutPrefix(encodedHash, "$2y$"); ok {
		encodedHash = "$2a$" + rest
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHashFormat
	}
}

func decodeArgon2id(encodedHash string) (HashParams, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=...,t=...,p=...", salt, key
	fields := strings.Split(encodedHash, "$")
	if len(fields) != 6 || fields[1] != SchemeArgon2id {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var p HashParams
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
