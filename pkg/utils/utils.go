package utils

import (
	"crypto/rand"
	"math/big"
)

const randomStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a cryptographically random string of the given
// length. Used for reset and verification tokens.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(randomStringCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is broken
			panic(err)
		}
		b[i] = randomStringCharset[n.Int64()]
	}
	return string(b)
}
