// Package service contains the application use cases of the card backend.
// It orchestrates domain objects and the store interfaces (internal/store)
// to register and authenticate users, administer users and manage cards.
//
// Key components:
//
//   - AuthService registers users and issues access tokens.
//   - UserService implements the administrator's user management.
//   - CardService implements card creation, listing, the status lifecycle
//     and transfers between a user's own cards.
//
// Every operation performed on behalf of a caller receives an explicit
// domain.Requester. Read-then-write operations run inside
// store.RunInTransaction and lock card rows with SELECT ... FOR UPDATE.
//
// Errors are sentinel values (see errors.go) checked with errors.Is. The API
// layer maps them to HTTP status codes and safe messages.
package service
