// Package models defines the domain models shared by the ledger, the storage
// backends and the presentation surfaces.
//
// # Models
//
//   - Person: a name with a running balance; the only persisted record
//   - DebtEdge: a derived settle-up suggestion between two people
//
// People are addressed by their position in the ledger. Positions are only
// meaningful within a single action; they shift when the ledger is reset.
//
// # Persisted shape
//
// A saved ledger is an ordered array of {"name", "balance"} records. There is no
// version field and no schema migration for the file format.
package models
