// Package dataset loads the IMDB movie_link corpus used by the experiments.
// The CSV has rows (id, movie_id, linked_movie_id, link_type_id); each row
// becomes one edge movie -> linked movie with the link type id as weight.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sanonone/threshdb/pkg/graph"
)

// LoadMovieLinks reads a movie_link.csv file, keeping only rows whose link
// type is in linkTypes (nil or empty keeps everything, matching the "all"
// link group). Movie ids are remapped to dense node ids in order of first
// appearance; the returned node count covers every referenced movie.
func LoadMovieLinks(path string, linkTypes []int) (nodes int, arcs []graph.Arc, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("dataset: open movie links: %w", err)
	}
	defer f.Close()
	return ReadMovieLinks(f, linkTypes)
}

// ReadMovieLinks is LoadMovieLinks over any reader (handy for tests).
func ReadMovieLinks(r io.Reader, linkTypes []int) (int, []graph.Arc, error) {
	keep := make(map[int]struct{}, len(linkTypes))
	for _, t := range linkTypes {
		keep[t] = struct{}{}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.ReuseRecord = true

	// Dense remapping of movie ids in order of first appearance.
	nodeOf := make(map[int]int)
	remap := func(movie int) int {
		if id, ok := nodeOf[movie]; ok {
			return id
		}
		id := len(nodeOf)
		nodeOf[movie] = id
		return id
	}

	var arcs []graph.Arc
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, fmt.Errorf("dataset: read movie links: %w", err)
		}
		line++

		movie, err1 := strconv.Atoi(rec[1])
		linked, err2 := strconv.Atoi(rec[2])
		linkType, err3 := strconv.Atoi(rec[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, nil, fmt.Errorf("dataset: malformed row %d: %v", line, rec)
		}

		if len(keep) > 0 {
			if _, ok := keep[linkType]; !ok {
				continue
			}
		}

		arcs = append(arcs, graph.Arc{
			From:   remap(movie),
			To:     remap(linked),
			Weight: int64(linkType),
		})
	}

	return len(nodeOf), arcs, nil
}
