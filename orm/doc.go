/*
Package orm provides an easy to use db wrapper.

Break state space into prefixed sections called buckets. Each bucket
contains only one type of object, addressed by a primary key. A lookup of
an absent key returns a nil object, never a zero-value model, so presence
checks are always explicit.
*/
package orm
