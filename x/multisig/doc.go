/*
Package multisig implements a threshold-authorized action queue: a fixed
set of principals collectively controls a wallet that can perform
arbitrary external calls.

Signers queue actions and execute them later. Every queued action is
identified by the deterministic hash of its content (target, value,
payload), not by its queue position; once an identity is marked executed
it can never run again, through any index, and cannot even be re-queued.
The queue itself is append-only; executed entries stay in place.

Trust model: the quorum value constrains configuration changes only. At
the execution call site the gate is membership, not a vote count: any
single current signer may execute any queued action unilaterally. Deploy
a wallet only with signers that are each fully trusted.
*/
package multisig
