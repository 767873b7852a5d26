package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16

	argonPrefix = "argon2id"
)

// HashPassword returns an argon2id digest encoded as
// argon2id$t$m$p$k$salt$hash. A fresh salt is drawn on every call.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	h := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("%s$%d$%d$%d$%d$%s$%s",
		argonPrefix, argonTime, argonMemory, argonThreads, argonKeyLen,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(h),
	), nil
}

// CheckPassword reports whether password matches digest. Malformed digests
// never match.
func CheckPassword(digest, password string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}

	p, err := decode(digest)
	if err != nil {
		return false
	}

	want := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, p.keyLen)
	if len(want) != len(p.hash) {
		return false
	}
	return subtle.ConstantTimeCompare(want, p.hash) == 1
}

// NeedsRehash is true for digests not produced by the current HashPassword.
func NeedsRehash(digest string) bool {
	if isBcrypt(digest) {
		return true
	}
	p, err := decode(digest)
	if err != nil {
		return true
	}
	return p.time != argonTime || p.memory != argonMemory || p.threads != argonThreads || p.keyLen != argonKeyLen
}

type params struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	salt    []byte
	hash    []byte
}

func decode(digest string) (*params, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 7 {
		return nil, fmt.Errorf("invalid hash format")
	}
	if parts[0] != argonPrefix {
		return nil, fmt.Errorf("unsupported hash algorithm %q", parts[0])
	}

	t, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, err
	}
	m, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return nil, err
	}
	p, err := strconv.ParseUint(parts[3], 10, 8)
	if err != nil {
		return nil, err
	}
	k, err := strconv.ParseUint(parts[4], 10, 32)
	if err != nil {
		return nil, err
	}
	if t == 0 || p == 0 || k == 0 {
		return nil, fmt.Errorf("invalid argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, err
	}
	h, err := base64.RawStdEncoding.DecodeString(parts[6])
	if err != nil {
		return nil, err
	}

	return &params{
		time:    uint32(t),
		memory:  uint32(m),
		threads: uint8(p),
		keyLen:  uint32(k),
		salt:    salt,
		hash:    h,
	}, nil
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}
