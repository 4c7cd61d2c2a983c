// Package httputil provides the HTTP plumbing of the modkit API server.
//
// # Responses
//
// [WriteJSON] encodes a value with the streaming [json.Writer], so API
// responses are formatted exactly like the files modkit writes. [WriteError]
// maps an error's code (see [errors.GetCode]) to an HTTP status:
//
//   - not-found codes become 404
//   - malformed input and JSON errors become 400
//   - graph errors (an unavailable mod in a selection) become 422
//   - everything else is a 500
//
// # Middleware
//
// [RequestID] tags every request with an X-Request-ID, reusing the client's
// value when present and generating a UUID otherwise. [Observe] reports each
// request and response to the registered [observability.ServerHooks].
package httputil
