// Package persistence stores graph snapshots on disk so that a generated
// graph can be reused across experiment runs. The format is a plain
// tab-separated edge list ("from\tto\tweight", one edge per line), the same
// shape the experiment loader consumes.
package persistence

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sanonone/threshdb/pkg/graph"
)

// SnapshotWriter streams edges to a snapshot file.
type SnapshotWriter struct {
	file *os.File
	buf  *bufio.Writer
	path string
}

// NewSnapshotWriter creates (or truncates) a snapshot file at the given path.
func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	file, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}

	return &SnapshotWriter{
		file: file,
		buf:  bufio.NewWriter(file), // 4kb buf (default)
		path: path,
	}, nil
}

// WriteEdge appends one edge line.
func (w *SnapshotWriter) WriteEdge(e graph.Edge) error {
	_, err := fmt.Fprintf(w.buf, "%d\t%d\t%d\n", e.From, e.To, e.Weight)
	return err
}

// Close flushes the buffer, fsyncs, and closes the file.
func (w *SnapshotWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// SaveGraph writes every edge of g to path.
func SaveGraph(path string, g *graph.Graph) error {
	w, err := NewSnapshotWriter(path)
	if err != nil {
		return err
	}
	for _, e := range g.Edges() {
		if err := w.WriteEdge(e); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to write snapshot edge: %w", err)
		}
	}
	return w.Close()
}

// LoadArcs reads a snapshot back into raw arcs plus the implied node count
// (max endpoint + 1). The result feeds graph.Build directly.
func LoadArcs(path string) (nodes int, arcs []graph.Arc, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 3 {
			return 0, nil, fmt.Errorf("snapshot line %d: want 3 fields, got %d", line, len(fields))
		}
		from, err1 := strconv.Atoi(fields[0])
		to, err2 := strconv.Atoi(fields[1])
		weight, err3 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, nil, fmt.Errorf("snapshot line %d: malformed edge %q", line, text)
		}

		arcs = append(arcs, graph.Arc{From: from, To: to, Weight: weight})
		if from >= nodes {
			nodes = from + 1
		}
		if to >= nodes {
			nodes = to + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nodes, arcs, nil
}
