// Package connection provides the HTTP client vitals-cli uses to talk to
// a vitals server.
//
// Responses from the JSON endpoints arrive in the server's envelope;
// ParseResponse unwraps it and turns error envelopes into *APIError.
package connection
