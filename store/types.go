package store

import "github.com/iov-one/trustee"

// Move references for all storage types into this package for shorter
// names everywhere.

type ReadOnlyKVStore = trustee.ReadOnlyKVStore
type KVStore = trustee.KVStore
type Iterator = trustee.Iterator
type CacheableKVStore = trustee.CacheableKVStore
type KVCacheWrap = trustee.KVCacheWrap

// Batch can write multiple ops atomically to an underlying store.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Write() error
}

// Op is one write operation recorded by a batch.
type Op struct {
	delete bool
	key    []byte
	value  []byte
}

// SetOp returns an Op that writes a value.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp returns an Op that deletes a key.
func DelOp(key []byte) Op {
	return Op{key: key, delete: true}
}

// Apply performs the operation on the given store.
func (o Op) Apply(out KVStore) error {
	if o.delete {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// IsDelete returns true if this op deletes a key.
func (o Op) IsDelete() bool {
	return o.delete
}

// Key returns the key this op modifies.
func (o Op) Key() []byte {
	return o.key
}

// NonAtomicBatch just piles up ops and executes them later on the
// underlying store. Can be used when there is no better option.
type NonAtomicBatch struct {
	out KVStore
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch to be later written to the
// given store.
func NewNonAtomicBatch(out KVStore) *NonAtomicBatch {
	return &NonAtomicBatch{
		out: out,
	}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write applies all recorded ops to the output store and resets the
// batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// ShowOps returns all ops recorded so far. Test helper.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
