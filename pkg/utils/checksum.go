package utils

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the hex xxhash digest of a file's content
func Checksum(content []byte) string {
	digest := xxhash.New()
	digest.Write(content)
	return hex.EncodeToString(digest.Sum(nil))
}
