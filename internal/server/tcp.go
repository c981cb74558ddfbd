package server

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/sanonone/threshdb/internal/protocol"
	"github.com/sanonone/threshdb/pkg/harness"
	"github.com/sanonone/threshdb/pkg/query"
)

// acceptLoop serves the TCP text protocol until the listener is closed.
func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener means shutdown, anything else is logged and
			// the loop keeps going.
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("TCP accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// handleConn reads one command per line and writes one reply per command.
// Replies start with "+" on success and "-ERR" on failure.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd, err := protocol.Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(conn, "-ERR %v\r\n", err)
			continue
		}

		reply, err := s.execCommand(cmd)
		if err != nil {
			fmt.Fprintf(conn, "-ERR %v\r\n", err)
			continue
		}
		fmt.Fprintf(conn, "+%s\r\n", reply)
	}
}

// execCommand dispatches one parsed TCP command.
func (s *Server) execCommand(cmd *protocol.Command) (string, error) {
	switch cmd.Name {
	case "PING":
		return "PONG", nil

	case "GEN":
		// GEN <ba|full> <n> <m0> <seed>
		if len(cmd.Args) != 4 {
			return "", fmt.Errorf("usage: GEN <ba|full> <n> <m0> <seed>")
		}
		n, err1 := strconv.Atoi(cmd.Args[1])
		m0, err2 := strconv.Atoi(cmd.Args[2])
		seed, err3 := strconv.ParseInt(cmd.Args[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return "", fmt.Errorf("invalid GEN parameters %v", cmd.Args[1:])
		}
		return s.buildGraph(harness.DataSpec{Kind: cmd.Args[0], N: n, M0: m0, Seed: seed})

	case "LOAD":
		// LOAD <imdb|snapshot> <path>
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("usage: LOAD <imdb|snapshot> <path>")
		}
		return s.buildGraph(harness.DataSpec{Kind: cmd.Args[0], Path: cmd.Args[1]})

	case "QUERY":
		// QUERY <graph> <class> <method> <k> <threshold>
		if len(cmd.Args) != 5 {
			return "", fmt.Errorf("usage: QUERY <graph> <class> <method> <k> <threshold>")
		}
		entry, ok := s.getGraph(cmd.Args[0])
		if !ok {
			return "", fmt.Errorf("graph %q not found", cmd.Args[0])
		}
		class, err := query.ParseClass(cmd.Args[1])
		if err != nil {
			return "", err
		}
		method, err := query.ParseMethod(cmd.Args[2])
		if err != nil {
			return "", err
		}
		k, err := strconv.Atoi(cmd.Args[3])
		if err != nil {
			return "", fmt.Errorf("invalid k %q", cmd.Args[3])
		}
		th, err := strconv.ParseInt(cmd.Args[4], 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid threshold %q", cmd.Args[4])
		}

		res, err := s.driver.Evaluate(entry.g, query.Request{
			Class: class, Method: method, K: k, Threshold: th,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d matches in %.3fms",
			res.Count, float64(res.Elapsed)/float64(time.Millisecond)), nil

	case "SESSION":
		// SESSION <graph> <class> <k>
		if len(cmd.Args) != 3 {
			return "", fmt.Errorf("usage: SESSION <graph> <class> <k>")
		}
		entry, ok := s.getGraph(cmd.Args[0])
		if !ok {
			return "", fmt.Errorf("graph %q not found", cmd.Args[0])
		}
		class, err := query.ParseClass(cmd.Args[1])
		if err != nil {
			return "", err
		}
		k, err := strconv.Atoi(cmd.Args[2])
		if err != nil {
			return "", fmt.Errorf("invalid k %q", cmd.Args[2])
		}
		sess, err := s.addSession(entry, class, k)
		if err != nil {
			return "", err
		}
		return sess.ID, nil

	case "ADVANCE":
		// ADVANCE <session> <threshold>
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("usage: ADVANCE <session> <threshold>")
		}
		sess, ok := s.getSession(cmd.Args[0])
		if !ok {
			return "", fmt.Errorf("session %q not found", cmd.Args[0])
		}
		th, err := strconv.ParseInt(cmd.Args[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid threshold %q", cmd.Args[1])
		}
		delta, err := sess.eval.Advance(th)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d added, %d total, window %d edges",
			len(delta.Added), len(sess.eval.Matches()), sess.eval.WindowSize()), nil

	case "RESET":
		// Drops the driver's cached windowed sessions. Explicit sessions
		// created with SESSION are untouched.
		s.driver.Reset()
		return "OK", nil

	default:
		return "", fmt.Errorf("unknown command %q", cmd.Name)
	}
}

// buildGraph is the shared back half of GEN and LOAD.
func (s *Server) buildGraph(spec harness.DataSpec) (string, error) {
	g, descr, err := harness.BuildData(spec)
	if err != nil {
		return "", err
	}
	entry := s.addGraph(g, descr, spec.Indexed)
	return fmt.Sprintf("%s (%s)", entry.ID, descr), nil
}
