// Package remote is the HTTP adapter for the guideline service.
//
// Client implements calc.Adapter for POST /calculate and POST
// /calculate/batch and exposes the uncached metadata endpoints. Every call
// is bounded by a resilience.Timeout and reports failures as calc faults:
//
//   - non-2xx responses become *calc.RemoteFault with the service's message
//   - expired deadlines become *calc.TimeoutFault
//   - other transport failures become *calc.ConnectionFault
//
// Credentials travel only in the X-API-KEY header set by APIKeyTransport.
// Transport-level retries are off unless Config.Retries is positive; Guard
// offers the same opt-in at the adapter level.
package remote
