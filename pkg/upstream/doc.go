// Package upstream manages the gateway's outbound side: the catalog of
// upstream services (application backend, shipping-rate providers, payment,
// OTP messaging, webinar gateway), a pooled single-attempt HTTP caller, and
// the provider-specific quirks the rest of the gateway should not have to
// know about (auth header conventions, HMAC request signing, response
// envelope reshaping).
//
// The caller performs exactly one HTTP attempt per invocation. A failed
// call surfaces immediately as a typed error; retrying is a client
// responsibility, never the gateway's.
package upstream
