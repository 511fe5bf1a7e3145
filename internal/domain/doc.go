// Package domain contains the core business entities of the bank-card service:
// users, cards, their lifecycle rules and the authorization predicate used by
// the service layer. It has no knowledge of storage or transport.
package domain
