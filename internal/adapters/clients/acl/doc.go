// Package acl is the anti-corruption layer between the remote posts endpoint
// and the quote domain.
//
// The remote speaks in posts (id, userId, title, body). Nothing outside this
// package sees that shape: [PostsClient] translates a posts listing into
// [ports.RemoteRecord] values and a [domain.Quote] into a post body.
//
// # Errors
//
// Every failure leaves this package as a domain error:
//   - 404 becomes [domain.ErrNotFound]
//   - 409 becomes [domain.ErrConflict]
//   - 401 and 403 become [domain.ErrForbidden]
//   - other 4xx become [domain.ErrValidation], naming the first field the
//     remote reported under error.details
//   - 429, 5xx, network failures, an open circuit and unreadable or oversized
//     bodies become [domain.ErrUnavailable]
package acl
