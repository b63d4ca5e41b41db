/*
Package trustee provides the shared primitives for a pair of small ledger
state machines: a peer-to-peer token swap ledger (x/swap) and a threshold
authorized action queue (x/multisig).

Both machines run over the same substrate defined here: 20-byte addresses,
deterministic content identities, seconds-precision time carried in a
context, a transactional key-value store and one-way notification events.
The host environment is expected to serialize all mutating operations and
to apply each one atomically; the store's cache-wrap layer provides the
matching all-or-nothing write discipline inside a single operation.
*/
package trustee
