package random

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n random ASCII letters, e.g. for naming shared in-memory databases.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	upper := big.NewInt(int64(len(allowedLetters)))
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// Token returns a URL-safe base64 encoding of n random bytes. Used for CSP nonces.
func Token(n uint) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
