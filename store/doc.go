/*
Package store provides an in-memory, transactional key-value store.

The central piece is the btree backed cache wrap: a scratch layer over any
backing store that buffers all writes until Write is called, or drops them
all on Discard. State machine operations run on a cache wrap so that a
failing precondition or a rejected downstream call rolls back every write
the operation attempted.
*/
package store
