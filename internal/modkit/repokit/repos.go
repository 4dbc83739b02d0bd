// Package repokit holds the seams repos and services share with the store
package repokit

import "newsletter/internal/platform/store"

type (
	// Queryer is what a bound repo runs its SQL against
	Queryer = store.RowQuerier

	// TxRunner is the pool level handle a service binds its repos to
	TxRunner = store.TxRunner

	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)
