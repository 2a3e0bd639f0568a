// Package protocol defines the newline-delimited text wire format:
// inbound command parsing ("/msg <id> <text>" vs bare broadcast lines)
// and the outbound line shapes (welcome, broadcast, private, notice).
package protocol
