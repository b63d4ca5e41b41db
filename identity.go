package trustee

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/iov-one/trustee/errors"
)

// IdentityLength is the size of every derived identity digest.
const IdentityLength = sha256.Size

// Identity is a fixed-size, collision-resistant digest derived from an
// ordered tuple of fields. It serves both as a lookup key and as a
// de-duplication guard: identical field tuples always derive the identical
// identity, so callers can detect duplicates without keeping a counter.
type Identity []byte

// DeriveIdentity computes the identity of an ordered field tuple.
//
// Every field is length-prefixed before hashing so that the tuple
// boundaries are unambiguous: ("ab","c") and ("a","bc") derive different
// identities. The derivation is a pure function with no error path.
func DeriveIdentity(fields ...[]byte) Identity {
	h := sha256.New()
	var scratch [binary.MaxVarintLen64]byte
	for _, f := range fields {
		n := binary.PutUvarint(scratch[:], uint64(len(f)))
		h.Write(scratch[:n])
		h.Write(f)
	}
	return h.Sum(nil)
}

// AmountField returns the canonical byte encoding of a numeric field for
// identity derivation.
func AmountField(amount int64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(amount))
	return raw[:]
}

// Equals checks if two identities are the same.
func (i Identity) Equals(o Identity) bool {
	return bytes.Equal(i, o)
}

// Validate returns an error if the identity is not the valid size.
func (i Identity) Validate() error {
	if len(i) != IdentityLength {
		return errors.Wrapf(errors.ErrInput, "identity must be %d bytes", IdentityLength)
	}
	return nil
}

func (i Identity) String() string {
	if len(i) == 0 {
		return "(nil)"
	}
	return fmt.Sprintf("%X", []byte(i))
}

// ParseIdentity decodes a hex-encoded identity into its binary form.
func ParseIdentity(enc string) (Identity, error) {
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "identity %q: %v", enc, err)
	}
	id := Identity(raw)
	return id, id.Validate()
}
