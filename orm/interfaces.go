package orm

import "github.com/iov-one/trustee"

// Validater is implemented by anything that can sanity check its own
// state before it is persisted.
type Validater interface {
	Validate() error
}

// Model is the data stored in a bucket. This is typically a light wrapper
// around a struct with a JSON codec.
type Model interface {
	trustee.Persistent
	Validater
}

// Keyed is anything that can identify itself.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Object is what is stored in the bucket. Key is joined with the bucket
// prefix to form the full store key.
type Object interface {
	Keyed
	Validater
	Value() Model
}
