package store

import (
	"bytes"

	"github.com/google/btree"
)

// DefaultFreeListSize is the size we hold for free nodes in the btree.
const DefaultFreeListSize = btree.DefaultFreeListSize

// MemStore returns a simple in-memory implementation. There is no
// persistence here; everything lives for the lifetime of the instance.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, NewNonAtomicBatch(e), nil)
}

// BTreeCacheWrap places a btree cache over a KVStore. All writes are
// buffered in the btree and in a batch; Write flushes the batch into the
// backing store, Discard drops everything.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap initializes a btree to cache around this kv store.
// Use ReadOnlyKVStore to emphasize that all writes must go through the
// batch.
//
// free may be nil, but set to an existing list to reuse it for memory
// savings.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another btree on top of this one. Don't change horses
// in mid-stream; the parent must not be modified while the child is live.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch that eventually may write to our cache wrap.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write syncs with the underlying store and invalidates this wrap.
func (b BTreeCacheWrap) Write() error {
	b.bt.Clear(true)
	return b.batch.Write()
}

// Discard invalidates this CacheWrap and releases all data.
func (b BTreeCacheWrap) Discard() {
	b.bt.Clear(true)
}

// Set writes to the btree cache and adds it to the batch.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

// Delete shadows the key in the btree cache with a tombstone and adds the
// delete to the batch.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeleteItem(key))
	return b.batch.Delete(key)
}

// Get reads from the cache first, falling back to the backing store for
// keys this wrap never touched.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	switch t := res.(type) {
	case setItem:
		return t.value, nil
	case deleteItem:
		return nil, nil
	case nil:
		return b.back.Get(key)
	}
	return nil, nil
}

// Has behaves like Get but only checks presence.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	switch res.(type) {
	case setItem:
		return true, nil
	case deleteItem:
		return false, nil
	}
	return b.back.Has(key)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// The cached writes are merged with the backing store content.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return b.merge(parent, start, end, false)
}

// ReverseIterator over a domain of keys in descending order. End is
// exclusive.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return b.merge(parent, start, end, true)
}

// merge materializes the union of the backing iterator and the cached
// writes within [start, end). In-memory domains are small, so collecting
// the result set up front keeps the iteration logic simple.
func (b BTreeCacheWrap) merge(parent Iterator, start, end []byte, reverse bool) (Iterator, error) {
	pairs, err := collect(parent)
	if err != nil {
		return nil, err
	}
	if reverse {
		pairs.reverse()
	}

	ascend := func(i btree.Item) bool {
		switch t := i.(type) {
		case setItem:
			pairs.set(t.key, t.value)
		case deleteItem:
			pairs.delete(t.key)
		}
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(ascend)
	case start == nil:
		b.bt.AscendLessThan(bkey{end}, ascend)
	case end == nil:
		b.bt.AscendGreaterOrEqual(bkey{start}, ascend)
	default:
		b.bt.AscendRange(bkey{start}, bkey{end}, ascend)
	}

	if reverse {
		pairs.reverse()
	}
	return pairs.iterator(), nil
}

/////////////////////////////////////////////////////////
// Empty KVStore

// EmptyKVStore never holds any data, used as a base layer to test caching.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

func (e EmptyKVStore) Set(key, value []byte) error { return nil }

func (e EmptyKVStore) Delete(key []byte) error { return nil }

func (e EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return (&sliceIterator{}), nil
}

func (e EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return (&sliceIterator{}), nil
}

/////////////////////////////////////////////////////////
// btree items

// bkey is a query-only item, used to compare against stored items.
type bkey struct {
	key []byte
}

type keyer interface {
	getKey() []byte
}

func (k bkey) getKey() []byte { return k.key }

func (k bkey) Less(than btree.Item) bool {
	return bytes.Compare(k.key, than.(keyer).getKey()) < 0
}

type setItem struct {
	key   []byte
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{key: key, value: value}
}

func (i setItem) getKey() []byte { return i.key }

func (i setItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(keyer).getKey()) < 0
}

// deleteItem shadows a key from the backing store.
type deleteItem struct {
	key []byte
}

func newDeleteItem(key []byte) deleteItem {
	return deleteItem{key: key}
}

func (i deleteItem) getKey() []byte { return i.key }

func (i deleteItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(keyer).getKey()) < 0
}
