package credentials

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	linkCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	linkCodeLength = 6
)

// GenerateLinkCode generates a caregiver invitation code in the format
// "XXXXXX-<elderID>", six random characters from A-Z and 0-9.
func GenerateLinkCode(elderID int64) (string, error) {
	code := make([]byte, linkCodeLength)

	for i := 0; i < linkCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(linkCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = linkCodeChars[num.Int64()]
	}

	return string(code) + "-" + strconv.FormatInt(elderID, 10), nil
}
