// Package mocks provides centralized mock implementations for testing.
//
// Store mocks are built on testify/mock so tests can assert on call
// arguments and ordering. Small collaborators (JWT, password hashing) use
// function fields with fixed defaults, which keeps handler tests short.
//
// Usage:
//
//	users := new(mocks.MockUserStore)
//	users.On("GetByID", mock.Anything, id).Return(user, nil)
//
//	jwtSvc := &mocks.MockJWTService{Token: "token"}
//
// Store mocks return themselves from WithTx unless a WithTx expectation is
// registered, so transactional service code can be tested against a
// go-sqlmock database without extra setup.
package mocks
