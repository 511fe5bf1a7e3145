// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers translate HTTP concerns into calls on the
// service layer and map service errors to status codes and safe messages.
package api
