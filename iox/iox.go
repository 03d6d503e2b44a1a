// Package iox provides small I/O cleanup helpers shared by the client and
// the CLI.
package iox

import "io"

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable, such as a
// consumed response body:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c.
// Designed for t.Cleanup and b.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(notifier))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error.
// Use for non-Close cleanup calls where errors are unactionable:
//
//	defer iox.DiscardErr(enc.Close)
func DiscardErr(fn func() error) { _ = fn() }
