// Package client implements the interactive terminal client: it connects
// to a server, learns its assigned id, forwards input lines, and prints
// incoming lines, tagging its own broadcasts with "(Me)".
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/linechat/linechat/internal/protocol"
	"github.com/linechat/linechat/internal/session"
)

// Run connects to addr and drives the interactive loop until the server
// closes the connection, the input source is exhausted, or ctx is
// cancelled. A failed connect is returned to the caller; the CLI turns it
// into a non-zero exit.
func Run(ctx context.Context, addr string, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}

	lc := session.NewTCPConn(conn, 0, 0)
	defer lc.Close()

	welcome, err := lc.ReadLine()
	if err != nil {
		return fmt.Errorf("read welcome: %w", err)
	}
	selfID, err := protocol.ParseWelcome(welcome)
	if err != nil {
		return fmt.Errorf("unexpected greeting: %w", err)
	}
	fmt.Fprintf(out, "Connected as Client %d\n", selfID)
	logger.Debug("connected", "addr", addr, "client_id", int64(selfID))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { lc.Close() })
	defer stop()

	// Pump input lines through a channel so the send duty can be released
	// by ctx even while a terminal read is pending. The pump goroutine is
	// left behind on shutdown; a blocked stdin read cannot be interrupted.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g := new(errgroup.Group)

	// Read duty: print incoming lines, tag own broadcasts. When the server
	// goes away the whole run winds down.
	g.Go(func() error {
		defer cancel()
		for {
			line, err := lc.ReadLine()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					logger.Info("server closed the connection")
					return nil
				}
				return fmt.Errorf("read: %w", err)
			}
			fmt.Fprintln(out, protocol.TagOwn(line, selfID))
		}
	})

	// Send duty: forward input lines verbatim. Input EOF stops sending but
	// keeps receiving until the server closes.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if err := lc.WriteLine(line); err != nil {
					if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
						return nil
					}
					return fmt.Errorf("send: %w", err)
				}
			}
		}
	})

	return g.Wait()
}
