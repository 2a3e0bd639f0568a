// Package session implements the per-connection control loop and the
// LineConn transport abstraction (plain TCP and websocket framings of
// the newline-delimited protocol).
package session
