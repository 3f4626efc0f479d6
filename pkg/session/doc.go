/*
Package session holds the state of a run and its persistence.

Store is the in-process session state shared by every screen: the ordered prompt
slugs, the current position and the response history. It is mutated only through
its methods and is owned by a single goroutine.

Manager persists Store snapshots through a ports.StateStore so a run can be resumed
later, and serialises access per session ID with reference-counted local locks and
an optional distributed locker.
*/
package session
