package trusteetest

import (
	"crypto/rand"

	"github.com/iov-one/trustee"
)

// NewCondition returns a random condition. Each call returns a different
// value.
func NewCondition() trustee.Condition {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return trustee.NewCondition("test", "rnd", data)
}

// NewAddress returns the address of a random condition.
func NewAddress() trustee.Address {
	return NewCondition().Address()
}
