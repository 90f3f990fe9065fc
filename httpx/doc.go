// Package httpx exposes an st8 store over HTTP.
//
// Handler serves the store's state on GET and dispatches JSON-encoded
// actions posted to it, so remote producers go through the same middleware
// pipeline as in-process callers.
package httpx
