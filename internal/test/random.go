package test

import "math/rand/v2"

const (
	loginAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789._-"
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#%&*+=?@"
)

// RandomLogin returns a login accepted by usecase.ValidateLogin, 3 to 32 bytes long.
func RandomLogin() string {
	return "u" + randomString(loginAlphabet, 2, 31)
}

// RandomPassword returns a printable password between minLen and maxLen bytes.
func RandomPassword(minLen, maxLen int) string {
	return randomString(passwordAlphabet, minLen, maxLen)
}

func randomString(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
