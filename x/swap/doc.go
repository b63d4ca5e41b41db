/*
Package swap implements a peer-to-peer token swap ledger. Two parties
exchange ownership of two different fungible assets atomically, without
the ledger ever taking custody: both sides pre-authorize the ledger to
move their asset, and execution performs both transfers in one atomic
operation.

Swap records are keyed by the deterministic identity of their field tuple,
so an identical proposal is rejected as a duplicate. Records are never
deleted; execution flips a terminal flag.

Either party can invalidate a pending swap at any time by revoking its
allowance. That is the intended escape hatch, not a defect.

All swaps of one ledger share a single absolute deadline fixed at
construction, regardless of when each swap was proposed.
*/
package swap
