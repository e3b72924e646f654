// Package valutatrade provides the core of a currency trading simulator.
//
// Users register, hold a multi-currency portfolio and buy or sell currencies
// against a cached snapshot of exchange rates. The core functionalities include:
//   - Currency Registry: a fixed table of fiat and crypto currencies, looked up
//     case-insensitively.
//   - Rate Store and Resolver: the latest observed pair rates, refused once
//     older than a TTL, resolved directly or by inversion.
//   - Portfolio Ledger: one wallet per currency, balances never negative.
//   - Trade Engine: buy and sell settle against the base currency, all or
//     nothing: a failed trade never reaches the store.
//
// Persistence and price feeds are collaborators: see the storage and updater
// packages. This package serves as the foundational logic for the `trade`
// command-line tool.
package valutatrade
