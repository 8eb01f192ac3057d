package repository

import (
	"learningcenter/pkg/dbctx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate row-locks the selected rows when dbc holds a transaction, so concurrent
// load-mutate-save commands on one aggregate run one after the other.
func forUpdate(dbc dbctx.Context, q *gorm.DB) *gorm.DB {
	if !dbc.InTx() {
		return q
	}
	return q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}
