// Package router implements message dispatch: broadcasts fan out to the
// whole registry, private messages go to one client, and unknown
// recipients bounce a notice back to the sender.
package router
