package store

import (
	"bytes"
	"sort"

	"github.com/iov-one/trustee/errors"
)

type kvpair struct {
	key   []byte
	value []byte
}

// kvpairs is an ascending ordered set of key/value pairs used to
// materialize iteration results.
type kvpairs []kvpair

// collect drains the given iterator into memory and releases it.
func collect(it Iterator) (kvpairs, error) {
	defer it.Release()

	var out kvpairs
	for {
		key, value, err := it.Next()
		switch {
		case err == nil:
			out = append(out, kvpair{key: key, value: value})
		case errors.ErrIteratorDone.Is(err):
			return out, nil
		default:
			return nil, err
		}
	}
}

// search returns the position of the key and whether it is present.
func (p kvpairs) search(key []byte) (int, bool) {
	idx := sort.Search(len(p), func(i int) bool {
		return bytes.Compare(p[i].key, key) >= 0
	})
	found := idx < len(p) && bytes.Equal(p[idx].key, key)
	return idx, found
}

func (p *kvpairs) set(key, value []byte) {
	idx, found := p.search(key)
	if found {
		(*p)[idx].value = value
		return
	}
	*p = append(*p, kvpair{})
	copy((*p)[idx+1:], (*p)[idx:])
	(*p)[idx] = kvpair{key: key, value: value}
}

func (p *kvpairs) delete(key []byte) {
	idx, found := p.search(key)
	if !found {
		return
	}
	*p = append((*p)[:idx], (*p)[idx+1:]...)
}

func (p kvpairs) reverse() {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

func (p kvpairs) iterator() Iterator {
	return &sliceIterator{data: p}
}

// sliceIterator wraps an in-memory slice of key/value pairs.
type sliceIterator struct {
	data kvpairs
	idx  int
}

var _ Iterator = (*sliceIterator)(nil)

// Next returns the next pair or ErrIteratorDone when consumed.
func (s *sliceIterator) Next() ([]byte, []byte, error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	val := s.data[s.idx]
	s.idx++
	return val.key, val.value, nil
}

// Release frees the iterator. It must not be used afterwards.
func (s *sliceIterator) Release() {
	s.data = nil
	s.idx = 0
}
