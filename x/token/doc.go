/*
Package token implements the fungible asset collaborator consumed by the
swap ledger: per-asset balances plus owner granted allowances that let a
named spender move a bounded quantity on the owner's behalf.

Each Ledger instance represents one asset. The swap ledger never talks to
a Ledger directly but resolves an asset reference through a Registry, so
any implementation of the Token interface can stand in.
*/
package token
