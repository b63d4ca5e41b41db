package store

import (
	"testing"

	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/trusteetest/assert"
)

func TestMemStoreSetGetDelete(t *testing.T) {
	db := MemStore()

	v, err := db.Get([]byte("hello"))
	assert.Nil(t, err)
	assert.Nil(t, v)

	assert.Nil(t, db.Set([]byte("hello"), []byte("world")))

	v, err = db.Get([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("world"), v)

	has, err := db.Has([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)

	assert.Nil(t, db.Delete([]byte("hello")))
	has, err = db.Has([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestCacheWrapWrite(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("2")))
	assert.Nil(t, cache.Delete([]byte("a")))

	// The parent is untouched until Write.
	v, err := db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), v)
	has, err := db.Has([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	assert.Nil(t, cache.Write())

	has, err = db.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
	v, err = db.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestCacheWrapDiscard(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("a"), []byte("overwritten")))
	assert.Nil(t, cache.Set([]byte("b"), []byte("2")))
	cache.Discard()

	v, err := db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), v)
	has, err := db.Has([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestCacheWrapShadowsReads(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Delete([]byte("a")))

	// The tombstone must shadow the backing store.
	v, err := cache.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, v)
	has, err := cache.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestIteratorMergesCacheAndBack(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))
	assert.Nil(t, db.Set([]byte("c"), []byte("3")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("2")))
	assert.Nil(t, cache.Delete([]byte("c")))
	assert.Nil(t, cache.Set([]byte("d"), []byte("4")))

	it, err := cache.Iterator(nil, nil)
	assert.Nil(t, err)
	var keys []string
	for {
		key, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		assert.Nil(t, err)
		keys = append(keys, string(key))
	}
	it.Release()
	assert.Equal(t, []string{"a", "b", "d"}, keys)
}

func TestReverseIterator(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("1")))
	assert.Nil(t, db.Set([]byte("b"), []byte("2")))
	assert.Nil(t, db.Set([]byte("c"), []byte("3")))

	it, err := db.ReverseIterator(nil, nil)
	assert.Nil(t, err)
	var keys []string
	for {
		key, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		assert.Nil(t, err)
		keys = append(keys, string(key))
	}
	it.Release()
	assert.Equal(t, []string{"c", "b", "a"}, keys)
}
