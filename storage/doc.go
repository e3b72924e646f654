// Package storage persists the trading data as JSON files in a folder.
//
// Each collection lives in its own human-readable file:
//
//	users.json           registered users
//	portfolios.json      one entry per user with its wallets
//	rates.json           the latest rate snapshot
//	exchange_rates.json  append-only history of every refreshed rate
//	.session             the id of the logged in user
//
// Collections are read whole and rewritten whole. Every write goes to a
// temporary file in the same folder that is then renamed over the target,
// so a reader never observes a half-written file. Missing files read as
// empty collections.
package storage
