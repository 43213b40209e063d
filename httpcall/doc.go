// Package httpcall performs a single outbound HTTP exchange bounded by a
// timeout and by the caller's context, and reports the outcome as a Result
// instead of an (value, error) pair.
//
// A call ends in exactly one of four ways:
//
//	Success(*Response)        the exchange finished in time, any status code
//	Failure(KindTimeout)      the per-call timer fired first
//	Failure(KindCancelled)    the caller's context was done first, or already done
//	Failure(KindTransport)    DNS, dial, TLS, framing or body read failed
//
// Non-2xx responses are successes at this layer; callers decide what a 404
// means. The package never retries and never logs.
package httpcall
