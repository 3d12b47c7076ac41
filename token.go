package account

import (
	"crypto/rand"
	"math/big"
)

const confirmationTokenLength = 60

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewConfirmationToken generates a random token used to prove control of
// a registered email address.
func NewConfirmationToken() string {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, confirmationTokenLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// rand.Reader failing means the platform is broken
			panic(err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}

	return string(buf)
}
