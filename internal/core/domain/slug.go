package domain

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const slugSuffixLength = 4

// NewSlug derives a URL-safe slug from a title and appends a short random
// base-36 suffix. The suffix lowers the collision probability; uniqueness is
// still enforced by the pre-save guard and the store's unique index.
func NewSlug(title string) string {
	return Slugify(title) + "-" + randomBase36(slugSuffixLength)
}

// Slugify lowercases the title, keeps ASCII letters and digits, and collapses
// every other run of characters into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) && r < 128 || '0' <= r && r <= '9' {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	if b.Len() == 0 {
		return "article"
	}
	return b.String()
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			// fallback: current nanoseconds
			return strconv.FormatInt(time.Now().UnixNano(), 36)[:n]
		}
		out[i] = base36[idx.Int64()]
	}
	return string(out)
}
