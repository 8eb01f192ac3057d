package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB

	afterCommit *[]func()
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// DB returns the transaction when one is open, else fallback, bound to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	tx := c.Tx
	if tx == nil {
		tx = fallback
	}
	return tx.WithContext(c.Ctx)
}

func (c Context) InTx() bool {
	return c.Tx != nil
}

// AfterCommit defers fn until the transaction opened by Runner.InTx commits. fn is
// dropped on rollback. Outside such a transaction fn runs immediately.
func (c Context) AfterCommit(fn func()) {
	if c.Tx == nil || c.afterCommit == nil {
		fn()
		return
	}
	*c.afterCommit = append(*c.afterCommit, fn)
}

// Runner opens transactions on a gorm handle.
type Runner struct {
	db *gorm.DB
}

func NewRunner(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// InTx runs fn inside one transaction. A non-nil error from fn rolls it back. Hooks
// registered with AfterCommit run once the commit succeeds.
func (r *Runner) InTx(ctx context.Context, fn func(dbc Context) error) error {
	var hooks []func()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: ctx, Tx: tx, afterCommit: &hooks})
	})
	if err != nil {
		return err
	}
	for _, h := range hooks {
		h()
	}
	return nil
}
