// Package loader bounds a single asynchronous acquisition with a timeout.
//
// Load runs the acquisition in its own goroutine and races it against a
// timer. The acquisition is not tied to the caller's cancellation: once
// started it runs to completion or until its own deadline, and a result that
// arrives after the timer has fired is logged and discarded. There are no
// retries; the caller decides whether to try again.
package loader
