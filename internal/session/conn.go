package session

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"
)

// LineConn is one client's transport: an inbound line source and an
// outbound line sink. Close must unblock a pending ReadLine or WriteLine.
type LineConn interface {
	// ReadLine blocks for the next inbound line, stripped of its newline.
	ReadLine() (string, error)

	// WriteLine writes one line followed by a newline. Safe for
	// concurrent use.
	WriteLine(line string) error

	// Close releases the transport. Idempotent.
	Close() error
}

// maxLineSize bounds a single inbound line; longer input errors the
// session rather than growing without limit.
const maxLineSize = 64 * 1024

// tcpConn frames a stream connection into newline-delimited text.
type tcpConn struct {
	conn    net.Conn
	scanner *bufio.Scanner

	writeMu      sync.Mutex
	idleTimeout  time.Duration
	writeTimeout time.Duration
}

// NewTCPConn wraps a stream connection. idleTimeout bounds the wait for
// the next inbound line (0 = wait forever); writeTimeout bounds each
// write (0 = no deadline).
func NewTCPConn(conn net.Conn, idleTimeout, writeTimeout time.Duration) LineConn {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &tcpConn{
		conn:         conn,
		scanner:      sc,
		idleTimeout:  idleTimeout,
		writeTimeout: writeTimeout,
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	if c.idleTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *tcpConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.conn.Write(append([]byte(line), '\n'))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}
