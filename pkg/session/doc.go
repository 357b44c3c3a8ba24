// Package session holds the in-memory conversation history of a chat run.
//
// Invariants:
// - Turns are append-only and kept in chronological order.
// - History only changes when an exchange succeeds; failed calls leave it untouched.
// - Each successful exchange appends exactly one user turn followed by one model turn.
//
// Usage:
//
//	sess := session.Start()
//	reply, err := sess.Exchange("hello", func(history []session.Turn) (string, error) {
//		return provider.Reply(history, "hello")
//	})
//	_, _ = reply, err
package session
