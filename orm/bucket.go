package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a generic holder that stores data of one model type under a
// prefixed subspace of the store.
//
// This is a generic building block that should generally be embedded in a
// type-safe wrapper to ensure all data is the same type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Model
}

// NewBucket creates a bucket to store data. The model is used as a
// prototype: lookups unmarshal into a fresh copy of its concrete type.
func NewBucket(name string, proto Model) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the bucket name.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including the bucket prefix.
func (b Bucket) DBKey(key []byte) []byte {
	// Always return a copy so a caller cannot mutate the prefix.
	res := make([]byte, len(b.prefix)+len(key))
	copy(res, b.prefix)
	copy(res[len(b.prefix):], key)
	return res
}

// Get loads the object under the given key, or returns nil if not
// present.
func (b Bucket) Get(db trustee.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}

	value := reflect.New(reflect.TypeOf(b.proto).Elem()).Interface().(Model)
	if err := value.Unmarshal(bz); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s", b.name)
	}
	return NewSimpleObj(key, value), nil
}

// Has checks if an object is present under the given key without loading
// it.
func (b Bucket) Has(db trustee.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Save validates and writes the given object.
func (b Bucket) Save(db trustee.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s", b.name)
	}
	bz, err := obj.Value().Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s", b.name)
	}
	return db.Set(b.DBKey(obj.Key()), bz)
}

// Delete removes the object under the given key. Deleting an absent key
// is not an error.
func (b Bucket) Delete(db trustee.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Iterate calls fn for every object of the bucket in ascending key order.
// Returning an error from fn stops the iteration and propagates the
// error.
func (b Bucket) Iterate(db trustee.ReadOnlyKVStore, fn func(key []byte, value Model) error) error {
	start, end := prefixRange(b.prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return err
	}
	defer it.Release()

	for {
		key, bz, err := it.Next()
		switch {
		case err == nil:
			value := reflect.New(reflect.TypeOf(b.proto).Elem()).Interface().(Model)
			if err := value.Unmarshal(bz); err != nil {
				return errors.Wrapf(err, "unmarshal %s", b.name)
			}
			if err := fn(key[len(b.prefix):], value); err != nil {
				return err
			}
		case errors.ErrIteratorDone.Is(err):
			return nil
		default:
			return err
		}
	}
}

// prefixRange turns a prefix into (start, end) to create a range.
// The end is the next prefix in lexicographical order, or nil when the
// prefix is all 0xff bytes.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
