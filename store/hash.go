package store

import (
	"encoding/binary"
	"strings"

	"github.com/dchest/siphash"
)

var (
	hashKey0 = binary.LittleEndian.Uint64([]byte("transkit"))
	hashKey1 = binary.LittleEndian.Uint64([]byte(" id hash"))
)

// CalculateHash returns the SipHash-2-4 of parts joined with "\x04".
// Empty parts are joined too, so ("a", "") and ("", "a") differ. The
// values are persisted and must not change.
func CalculateHash(parts ...string) int64 {
	data := []byte(strings.Join(parts, "\x04"))
	return int64(siphash.Hash(hashKey0, hashKey1, data))
}

// CalculateIDHash computes the id_hash of a unit. Units paired with a
// template are identified by context alone.
func CalculateIDHash(hasTemplate bool, source []string, context string) int64 {
	if hasTemplate {
		return CalculateHash(context)
	}
	return CalculateHash(JoinPlural(source), context)
}
