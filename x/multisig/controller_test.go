package multisig_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/errors"
	"github.com/iov-one/trustee/store"
	"github.com/iov-one/trustee/trusteetest"
	"github.com/iov-one/trustee/trusteetest/assert"
	"github.com/iov-one/trustee/x/multisig"
)

type fixture struct {
	db       trustee.CacheableKVStore
	wallet   *multisig.Wallet
	executor *trusteetest.Executor
	auth     *trusteetest.CtxAuth
	events   *trusteetest.EventRecorder
	s1       trustee.Condition
	s2       trustee.Condition
	s3       trustee.Condition
	outsider trustee.Condition
	target   trustee.Address
}

func newFixture(t *testing.T, quorum int32) *fixture {
	t.Helper()

	f := &fixture{
		db:       store.MemStore(),
		executor: &trusteetest.Executor{},
		auth:     &trusteetest.CtxAuth{Key: "auth"},
		events:   &trusteetest.EventRecorder{},
		s1:       trusteetest.NewCondition(),
		s2:       trusteetest.NewCondition(),
		s3:       trusteetest.NewCondition(),
		outsider: trusteetest.NewCondition(),
		target:   trusteetest.NewAddress(),
	}

	signers := []trustee.Address{f.s1.Address(), f.s2.Address(), f.s3.Address()}
	wallet, err := multisig.NewWallet(signers, quorum, f.executor, f.auth, f.events)
	assert.Nil(t, err)
	assert.Nil(t, wallet.Init(f.db))
	f.wallet = wallet

	return f
}

func (f *fixture) ctx(signer trustee.Condition) trustee.Context {
	ctx := context.Background()
	if signer != nil {
		ctx = f.auth.SetConditions(ctx, signer)
	}
	return ctx
}

func (f *fixture) queueMsg() *multisig.QueueMsg {
	return &multisig.QueueMsg{
		Target:  f.target,
		Value:   7,
		Payload: []byte("release funds"),
	}
}

func TestNewWallet(t *testing.T) {
	executor := &trusteetest.Executor{}
	auth := &trusteetest.CtxAuth{Key: "auth"}
	one := trusteetest.NewAddress()
	two := trusteetest.NewAddress()

	cases := map[string]struct {
		signers  []trustee.Address
		quorum   int32
		executor multisig.Executor
		auth     trustee.Authenticator
		wantErr  *errors.Error
	}{
		"valid configuration": {
			signers:  []trustee.Address{one, two},
			quorum:   2,
			executor: executor,
			auth:     auth,
		},
		"no signers": {
			signers:  nil,
			quorum:   1,
			executor: executor,
			auth:     auth,
			wantErr:  errors.ErrState,
		},
		"zero quorum": {
			signers:  []trustee.Address{one},
			quorum:   0,
			executor: executor,
			auth:     auth,
			wantErr:  errors.ErrState,
		},
		"quorum above signer count": {
			signers:  []trustee.Address{one, two},
			quorum:   3,
			executor: executor,
			auth:     auth,
			wantErr:  errors.ErrState,
		},
		"duplicate signer": {
			signers:  []trustee.Address{one, one},
			quorum:   1,
			executor: executor,
			auth:     auth,
			wantErr:  errors.ErrDuplicate,
		},
		"missing executor": {
			signers: []trustee.Address{one},
			quorum:  1,
			auth:    auth,
			wantErr: errors.ErrInput,
		},
		"missing authenticator": {
			signers:  []trustee.Address{one},
			quorum:   1,
			executor: executor,
			wantErr:  errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := multisig.NewWallet(tc.signers, tc.quorum, tc.executor, tc.auth, nil)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestInitOnlyOnce(t *testing.T) {
	f := newFixture(t, 2)
	err := f.wallet.Init(f.db)
	assert.IsErr(t, errors.ErrDuplicate, err)
}

func TestAddSigner(t *testing.T) {
	f := newFixture(t, 2)
	joiner := trusteetest.NewAddress()

	err := f.wallet.AddSigner(f.ctx(f.outsider), f.db, &multisig.AddSignerMsg{Signer: joiner})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Nil(t, f.wallet.AddSigner(f.ctx(f.s1), f.db, &multisig.AddSignerMsg{Signer: joiner}))

	signers, err := f.wallet.Signers(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(signers))
	assert.Equal(t, []string{"multisig/signer_added"}, f.events.Kinds())

	err = f.wallet.AddSigner(f.ctx(f.s1), f.db, &multisig.AddSignerMsg{Signer: joiner})
	assert.IsErr(t, errors.ErrDuplicate, err)
}

func TestAddSignerSetIsBounded(t *testing.T) {
	f := newFixture(t, 2)

	for i := 3; i < multisig.MaxSigners; i++ {
		msg := &multisig.AddSignerMsg{Signer: trusteetest.NewAddress()}
		assert.Nil(t, f.wallet.AddSigner(f.ctx(f.s1), f.db, msg))
	}

	msg := &multisig.AddSignerMsg{Signer: trusteetest.NewAddress()}
	err := f.wallet.AddSigner(f.ctx(f.s1), f.db, msg)
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestRemoveSigner(t *testing.T) {
	f := newFixture(t, 2)

	err := f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: trusteetest.NewAddress()})
	assert.IsErr(t, errors.ErrNotFound, err)

	assert.Nil(t, f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: f.s3.Address()}))
	signers, err := f.wallet.Signers(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(signers))

	// A removed signer no longer passes the membership gate.
	err = f.wallet.RemoveSigner(f.ctx(f.s3), f.db, &multisig.RemoveSignerMsg{Signer: f.s2.Address()})
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestRemoveSignerCapsQuorum(t *testing.T) {
	f := newFixture(t, 3)

	assert.Nil(t, f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: f.s3.Address()}))

	quorum, err := f.wallet.Quorum(f.db)
	assert.Nil(t, err)
	assert.Equal(t, int32(2), quorum)
	assert.Equal(t, []string{"multisig/signer_removed", "multisig/quorum_changed"}, f.events.Kinds())
}

func TestRemoveLastSigner(t *testing.T) {
	f := newFixture(t, 1)
	assert.Nil(t, f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: f.s3.Address()}))
	assert.Nil(t, f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: f.s2.Address()}))

	err := f.wallet.RemoveSigner(f.ctx(f.s1), f.db, &multisig.RemoveSignerMsg{Signer: f.s1.Address()})
	assert.IsErr(t, errors.ErrState, err)

	signers, err := f.wallet.Signers(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(signers))
}

func TestChangeQuorum(t *testing.T) {
	f := newFixture(t, 2)

	assert.Nil(t, f.wallet.ChangeQuorum(f.ctx(f.s1), f.db, &multisig.ChangeQuorumMsg{Quorum: 3}))
	quorum, err := f.wallet.Quorum(f.db)
	assert.Nil(t, err)
	assert.Equal(t, int32(3), quorum)
	assert.Equal(t, []string{"multisig/quorum_changed"}, f.events.Kinds())

	err = f.wallet.ChangeQuorum(f.ctx(f.s1), f.db, &multisig.ChangeQuorumMsg{Quorum: 4})
	assert.IsErr(t, errors.ErrInput, err)

	err = f.wallet.ChangeQuorum(f.ctx(f.s1), f.db, &multisig.ChangeQuorumMsg{Quorum: 0})
	assert.IsErr(t, errors.ErrInput, err)

	err = f.wallet.ChangeQuorum(f.ctx(f.outsider), f.db, &multisig.ChangeQuorumMsg{Quorum: 1})
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestQueue(t *testing.T) {
	f := newFixture(t, 2)

	index, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), index)

	// The queue is append-only; positions are assigned in order, and an
	// exact duplicate of a pending action is allowed.
	index, err = f.wallet.Queue(f.ctx(f.s2), f.db, f.queueMsg())
	assert.Nil(t, err)
	assert.Equal(t, int64(1), index)

	assert.Equal(t, []string{"multisig/action_queued", "multisig/action_queued"}, f.events.Kinds())

	_, err = f.wallet.Queue(f.ctx(f.outsider), f.db, f.queueMsg())
	assert.IsErr(t, errors.ErrUnauthorized, err)

	_, err = f.wallet.Queue(f.ctx(f.s1), f.db, &multisig.QueueMsg{Target: f.target, Value: -1})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestQueueIsBounded(t *testing.T) {
	f := newFixture(t, 2)

	for i := 0; i < multisig.MaxQueue; i++ {
		msg := &multisig.QueueMsg{
			Target:  f.target,
			Value:   int64(i),
			Payload: []byte(fmt.Sprintf("action %d", i)),
		}
		_, err := f.wallet.Queue(f.ctx(f.s1), f.db, msg)
		assert.Nil(t, err)
	}

	_, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestExecute(t *testing.T) {
	f := newFixture(t, 2)
	index, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)
	f.events.Reset()

	// Any single current signer may execute, including one that did not
	// queue the action.
	assert.Nil(t, f.wallet.Execute(f.ctx(f.s2), f.db, &multisig.ExecuteMsg{Index: index}))

	assert.Equal(t, 1, f.executor.CallCount())
	call := f.executor.Calls()[0]
	assert.Equal(t, f.target, call.Target)
	assert.Equal(t, int64(7), call.Value)
	assert.Equal(t, []byte("release funds"), call.Payload)
	assert.Equal(t, []string{"multisig/action_executed"}, f.events.Kinds())

	// The same entry cannot settle twice.
	err = f.wallet.Execute(f.ctx(f.s3), f.db, &multisig.ExecuteMsg{Index: index})
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 1, f.executor.CallCount())
}

func TestExecuteGate(t *testing.T) {
	f := newFixture(t, 2)
	index, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)

	err = f.wallet.Execute(f.ctx(f.outsider), f.db, &multisig.ExecuteMsg{Index: index})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	err = f.wallet.Execute(f.ctx(nil), f.db, &multisig.ExecuteMsg{Index: index})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	err = f.wallet.Execute(f.ctx(f.s1), f.db, &multisig.ExecuteMsg{Index: index + 1})
	assert.IsErr(t, errors.ErrNotFound, err)

	err = f.wallet.Execute(f.ctx(f.s1), f.db, &multisig.ExecuteMsg{Index: -1})
	assert.IsErr(t, errors.ErrInput, err)

	assert.Equal(t, 0, f.executor.CallCount())
}

func TestExecuteDeduplicatesByContent(t *testing.T) {
	f := newFixture(t, 2)

	// Two pending entries with identical content share one identity.
	first, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)
	second, err := f.wallet.Queue(f.ctx(f.s2), f.db, f.queueMsg())
	assert.Nil(t, err)

	assert.Nil(t, f.wallet.Execute(f.ctx(f.s1), f.db, &multisig.ExecuteMsg{Index: first}))

	err = f.wallet.Execute(f.ctx(f.s2), f.db, &multisig.ExecuteMsg{Index: second})
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 1, f.executor.CallCount())

	// The settled identity cannot re-enter the queue either.
	_, err = f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.IsErr(t, errors.ErrState, err)

	// Different content is a different identity.
	other := f.queueMsg()
	other.Value = 8
	_, err = f.wallet.Queue(f.ctx(f.s1), f.db, other)
	assert.Nil(t, err)
}

func TestExecuteRollsBackFailedCall(t *testing.T) {
	f := newFixture(t, 2)
	index, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)

	// The call writes downstream state and then fails. Neither the write
	// nor the executed mark may survive.
	f.executor.Err = fmt.Errorf("target reverted")
	f.executor.Handler = func(db trustee.KVStore) error {
		return db.Set([]byte("side-effect"), []byte("x"))
	}

	err = f.wallet.Execute(f.ctx(f.s2), f.db, &multisig.ExecuteMsg{Index: index})
	assert.IsErr(t, errors.ErrCall, err)

	has, err := f.db.Has([]byte("side-effect"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	// The entry is still pending; a later attempt succeeds.
	f.executor.Err = nil
	assert.Nil(t, f.wallet.Execute(f.ctx(f.s2), f.db, &multisig.ExecuteMsg{Index: index}))

	has, err = f.db.Has([]byte("side-effect"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)
	assert.Equal(t, 2, f.executor.CallCount())
}

func TestWalletSurvivesRestart(t *testing.T) {
	f := newFixture(t, 2)
	index, err := f.wallet.Queue(f.ctx(f.s1), f.db, f.queueMsg())
	assert.Nil(t, err)

	// A fresh controller over the same store sees the persisted state.
	signers := []trustee.Address{f.s1.Address(), f.s2.Address(), f.s3.Address()}
	reborn, err := multisig.NewWallet(signers, 2, f.executor, f.auth, f.events)
	assert.Nil(t, err)

	assert.Nil(t, reborn.Execute(f.ctx(f.s2), f.db, &multisig.ExecuteMsg{Index: index}))
	assert.Equal(t, 1, f.executor.CallCount())
}
