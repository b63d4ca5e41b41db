package main

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iov-one/trustee"
	"github.com/iov-one/trustee/store"
	"github.com/iov-one/trustee/x/multisig"
	"github.com/iov-one/trustee/x/swap"
	"github.com/iov-one/trustee/x/token"
)

func demoCmd() *cobra.Command {
	var (
		verbose bool
		expiry  time.Duration
		quorum  int32
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run both state machines against an in-memory store",
		Long: `Run a scripted scenario against an in-memory store: a two-party
token swap settled by the counterparty, followed by a threshold wallet
queueing and executing a fund release. Every emitted event is logged.`,
		RunE: func(c *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := runSwapDemo(logger, expiry); err != nil {
				return err
			}
			return runWalletDemo(logger, quorum)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug level logging")
	cmd.Flags().DurationVar(&expiry, "expiry", time.Hour, "how far in the future the swap deadline is")
	cmd.Flags().Int32Var(&quorum, "quorum", 2, "wallet threshold, between 1 and 3")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// zapEmitter forwards every state machine event to the logger.
type zapEmitter struct {
	logger *zap.Logger
}

var _ trustee.Emitter = (*zapEmitter)(nil)

func (e *zapEmitter) Emit(ev trustee.Event) {
	log := e.logger.With(zap.String("kind", ev.Kind()))
	switch ev := ev.(type) {
	case trustee.SwapProposed:
		log.Info("event",
			zap.Stringer("swap", ev.SwapID),
			zap.Stringer("initiator", ev.Initiator),
			zap.Stringer("counterparty", ev.Counterparty),
			zap.Int64("offer_amount", ev.OfferAmount),
			zap.Int64("ask_amount", ev.AskAmount),
		)
	case trustee.SwapExecuted:
		log.Info("event",
			zap.Stringer("swap", ev.SwapID),
			zap.Stringer("executor", ev.Executor),
		)
	case trustee.ActionQueued:
		log.Info("event",
			zap.Stringer("action", ev.ActionID),
			zap.Int64("index", ev.Index),
			zap.Stringer("target", ev.Target),
			zap.Int64("value", ev.Value),
		)
	case trustee.ActionExecuted:
		log.Info("event",
			zap.Stringer("action", ev.ActionID),
			zap.Int64("index", ev.Index),
			zap.Stringer("executor", ev.Executor),
		)
	default:
		log.Info("event")
	}
}

// demoAuth authenticates whatever conditions were attached to the
// context. A real host would derive them from transaction signatures.
type demoAuth struct{}

type demoAuthKey struct{}

var _ trustee.Authenticator = demoAuth{}

func withSigners(ctx trustee.Context, conds ...trustee.Condition) trustee.Context {
	return context.WithValue(ctx, demoAuthKey{}, conds)
}

func (demoAuth) GetConditions(ctx trustee.Context) []trustee.Condition {
	conds, _ := ctx.Value(demoAuthKey{}).([]trustee.Condition)
	return conds
}

func (a demoAuth) HasAddress(ctx trustee.Context, addr trustee.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

func demoCondition(name string) trustee.Condition {
	return trustee.NewCondition("demo", "seed", []byte(name))
}

func runSwapDemo(logger *zap.Logger, expiry time.Duration) error {
	logger = logger.Named("swap")
	db := store.MemStore()
	auth := demoAuth{}

	alice := demoCondition("alice")
	bob := demoCondition("bob")

	gold := token.NewLedger("gold")
	silver := token.NewLedger("silver")
	registry := token.NewMemRegistry()
	if err := registry.RegisterLedger(gold); err != nil {
		return err
	}
	if err := registry.RegisterLedger(silver); err != nil {
		return err
	}

	if err := gold.Issue(db, alice.Address(), 1000); err != nil {
		return err
	}
	if err := silver.Issue(db, bob.Address(), 500); err != nil {
		return err
	}
	// Both parties pre-authorize the ledger for their leg.
	if err := gold.Approve(db, alice.Address(), swap.LedgerAddr(), 100); err != nil {
		return err
	}
	if err := silver.Approve(db, bob.Address(), swap.LedgerAddr(), 50); err != nil {
		return err
	}

	now := time.Now()
	deadline := trustee.AsUnixTime(now.Add(expiry))
	ledger, err := swap.NewLedger(deadline, registry, auth, &zapEmitter{logger: logger})
	if err != nil {
		return err
	}

	ctx := trustee.WithBlockTime(context.Background(), now)

	swapID, err := ledger.Initiate(withSigners(ctx, alice), db, &swap.InitiateMsg{
		Counterparty: bob.Address(),
		OfferAsset:   gold.Ref(),
		AskAsset:     silver.Ref(),
		OfferAmount:  100,
		AskAmount:    50,
	})
	if err != nil {
		return err
	}

	// Proposing again with the same terms derives the same identity and
	// is refused.
	if _, err := ledger.Initiate(withSigners(ctx, alice), db, &swap.InitiateMsg{
		Counterparty: bob.Address(),
		OfferAsset:   gold.Ref(),
		AskAsset:     silver.Ref(),
		OfferAmount:  100,
		AskAmount:    50,
	}); err != nil {
		logger.Info("duplicate proposal refused", zap.String("err", err.Error()))
	}

	if err := ledger.Execute(withSigners(ctx, bob), db, &swap.ExecuteMsg{SwapID: swapID}); err != nil {
		return err
	}

	for name, l := range map[string]*token.Ledger{"gold": gold, "silver": silver} {
		for who, addr := range map[string]trustee.Address{"alice": alice.Address(), "bob": bob.Address()} {
			balance, err := l.Balance(db, addr)
			if err != nil {
				return err
			}
			logger.Info("balance",
				zap.String("asset", name),
				zap.String("holder", who),
				zap.Int64("amount", balance),
			)
		}
	}
	return nil
}

// releaseExecutor settles queued actions by paying out of a treasury
// wallet.
type releaseExecutor struct {
	ledger   *token.Ledger
	treasury trustee.Address
}

var _ multisig.Executor = (*releaseExecutor)(nil)

func (e *releaseExecutor) Call(ctx trustee.Context, db trustee.KVStore, target trustee.Address, value int64, payload []byte) error {
	return e.ledger.Move(db, e.treasury, target, value)
}

func runWalletDemo(logger *zap.Logger, quorum int32) error {
	logger = logger.Named("multisig")
	db := store.MemStore()
	auth := demoAuth{}

	s1 := demoCondition("signer-1")
	s2 := demoCondition("signer-2")
	s3 := demoCondition("signer-3")

	var payee [trustee.AddressLength]byte
	if _, err := rand.Read(payee[:]); err != nil {
		return err
	}
	target := trustee.Address(payee[:])

	gold := token.NewLedger("gold")
	treasury := trustee.NewCondition("demo", "vault", []byte("treasury")).Address()
	if err := gold.Issue(db, treasury, 10000); err != nil {
		return err
	}

	wallet, err := multisig.NewWallet(
		[]trustee.Address{s1.Address(), s2.Address(), s3.Address()},
		quorum,
		&releaseExecutor{ledger: gold, treasury: treasury},
		auth,
		&zapEmitter{logger: logger},
	)
	if err != nil {
		return err
	}
	if err := wallet.Init(db); err != nil {
		return err
	}

	ctx := context.Background()

	index, err := wallet.Queue(withSigners(ctx, s1), db, &multisig.QueueMsg{
		Target:  target,
		Value:   700,
		Payload: []byte("release payroll"),
	})
	if err != nil {
		return err
	}

	if err := wallet.Execute(withSigners(ctx, s2), db, &multisig.ExecuteMsg{Index: index}); err != nil {
		return err
	}

	// The identity already settled, so a second attempt is refused no
	// matter which signer asks.
	if err := wallet.Execute(withSigners(ctx, s3), db, &multisig.ExecuteMsg{Index: index}); err != nil {
		logger.Info("replay refused", zap.String("err", err.Error()))
	}

	balance, err := gold.Balance(db, target)
	if err != nil {
		return err
	}
	logger.Info("payout settled", zap.Stringer("target", target), zap.Int64("amount", balance))

	balance, err = gold.Balance(db, treasury)
	if err != nil {
		return err
	}
	logger.Info("treasury remainder", zap.Int64("amount", balance))
	return nil
}
