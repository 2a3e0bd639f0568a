// Package server wires the transports to the chat core: a TCP acceptor
// spawning one session per connection, a websocket gateway feeding the
// same registry, and a health endpoint exposing runtime stats.
package server
