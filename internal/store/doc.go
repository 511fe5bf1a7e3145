// Package store defines the persistence contracts for users and cards, the
// errors every implementation must return, and the transaction helper the
// service layer uses to group writes.
package store
