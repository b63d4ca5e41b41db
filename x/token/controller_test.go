package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/store"
	"github.com/iov-one/trustee/trusteetest"
)

func TestIssueAndBalance(t *testing.T) {
	db := store.MemStore()
	gold := NewLedger("gold")
	alice := trusteetest.NewAddress()

	balance, err := gold.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.NoError(t, gold.Issue(db, alice, 1000))
	balance, err = gold.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	err = gold.Issue(db, alice, 0)
	assert.True(t, errors.ErrInput.Is(err))
	err = gold.Issue(db, alice, math.MaxInt64)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestMove(t *testing.T) {
	db := store.MemStore()
	gold := NewLedger("gold")
	alice := trusteetest.NewAddress()
	bob := trusteetest.NewAddress()

	require.NoError(t, gold.Issue(db, alice, 100))
	require.NoError(t, gold.Move(db, alice, bob, 40))

	balance, err := gold.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)
	balance, err = gold.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)

	err = gold.Move(db, alice, bob, 61)
	assert.True(t, errors.ErrTransfer.Is(err))
}

func TestTransferFrom(t *testing.T) {
	db := store.MemStore()
	gold := NewLedger("gold")
	alice := trusteetest.NewAddress()
	bob := trusteetest.NewAddress()
	spender := trusteetest.NewAddress()

	require.NoError(t, gold.Issue(db, alice, 100))

	// Without a grant, no transfer is possible.
	err := gold.TransferFrom(db, spender, alice, bob, 10)
	assert.True(t, errors.ErrTransfer.Is(err))

	require.NoError(t, gold.Approve(db, alice, spender, 50))
	granted, err := gold.Allowance(db, alice, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(50), granted)

	require.NoError(t, gold.TransferFrom(db, spender, alice, bob, 30))
	balance, err := gold.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)
	granted, err = gold.Allowance(db, alice, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(20), granted)

	// The grant bounds the total moved, not a single transfer.
	err = gold.TransferFrom(db, spender, alice, bob, 21)
	assert.True(t, errors.ErrTransfer.Is(err))

	// Consuming the whole grant removes it.
	require.NoError(t, gold.TransferFrom(db, spender, alice, bob, 20))
	granted, err = gold.Allowance(db, alice, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(0), granted)
}

func TestTransferFromInsufficientBalance(t *testing.T) {
	db := store.MemStore()
	gold := NewLedger("gold")
	alice := trusteetest.NewAddress()
	bob := trusteetest.NewAddress()
	spender := trusteetest.NewAddress()

	require.NoError(t, gold.Issue(db, alice, 10))
	require.NoError(t, gold.Approve(db, alice, spender, 100))

	err := gold.TransferFrom(db, spender, alice, bob, 50)
	assert.True(t, errors.ErrTransfer.Is(err))
}

func TestApproveRevoke(t *testing.T) {
	db := store.MemStore()
	gold := NewLedger("gold")
	alice := trusteetest.NewAddress()
	spender := trusteetest.NewAddress()

	require.NoError(t, gold.Approve(db, alice, spender, 50))
	require.NoError(t, gold.Approve(db, alice, spender, 0))

	granted, err := gold.Allowance(db, alice, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(0), granted)
}

func TestRegistry(t *testing.T) {
	reg := NewMemRegistry()
	gold := NewLedger("gold")
	require.NoError(t, reg.RegisterLedger(gold))

	got, err := reg.Token(gold.Ref())
	require.NoError(t, err)
	assert.Equal(t, Token(gold), got)

	_, err = reg.Token(trusteetest.NewAddress())
	assert.True(t, errors.ErrNotFound.Is(err))

	err = reg.RegisterLedger(gold)
	assert.True(t, errors.ErrDuplicate.Is(err))
}
