package directory

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// inviteAlphabet excludes characters that are easy to confuse when read
// aloud or copied by hand (0/O, 1/I).
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 8

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		buf[i] = inviteAlphabet[n.Int64()]
	}
	return string(buf), nil
}
