// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package trackindex assigns dense integer codes to track URIs.
//
// Codes follow the sorted order of the distinct URIs, so any permutation of
// the same input produces the same assignment. The index must be built over
// the union of training and evaluation rows; a URI outside that universe has
// no code and CodeOf returns *UnknownTrackError.
//
// An Index is immutable after Build and safe for concurrent reads.
package trackindex

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTrack is matched by every *UnknownTrackError.
var ErrUnknownTrack = errors.New("unknown track")

// UnknownTrackError reports a lookup outside the indexed universe.
type UnknownTrackError struct {
	URI  string
	Code int
	// ByCode is set when the failed lookup was URIOf rather than CodeOf.
	ByCode bool
}

func (e *UnknownTrackError) Error() string {
	if e.ByCode {
		return fmt.Sprintf("unknown track code %d", e.Code)
	}
	return fmt.Sprintf("unknown track uri %q", e.URI)
}

func (e *UnknownTrackError) Unwrap() error {
	return ErrUnknownTrack
}

// Index is a bidirectional mapping between track URIs and codes in [0, Len()).
type Index struct {
	uris  []string
	codes map[string]int
}

// Build indexes the distinct values of uris in sorted order.
func Build(uris []string) *Index {
	sorted := make([]string, len(uris))
	copy(sorted, uris)
	sort.Strings(sorted)

	unique := sorted[:0]
	for i, u := range sorted {
		if i > 0 && u == sorted[i-1] {
			continue
		}
		unique = append(unique, u)
	}

	return fromSorted(unique)
}

// FromOrdered rebuilds an index from a URI list previously returned by URIs.
// The list must be strictly increasing.
func FromOrdered(uris []string) (*Index, error) {
	for i := 1; i < len(uris); i++ {
		if uris[i-1] >= uris[i] {
			return nil, fmt.Errorf("uri list not strictly increasing at position %d", i)
		}
	}
	owned := make([]string, len(uris))
	copy(owned, uris)
	return fromSorted(owned), nil
}

func fromSorted(uris []string) *Index {
	codes := make(map[string]int, len(uris))
	for code, u := range uris {
		codes[u] = code
	}
	return &Index{uris: uris, codes: codes}
}

// Len returns the size of the indexed universe.
func (ix *Index) Len() int {
	return len(ix.uris)
}

// CodeOf returns the code assigned to uri.
func (ix *Index) CodeOf(uri string) (int, error) {
	code, ok := ix.codes[uri]
	if !ok {
		return 0, &UnknownTrackError{URI: uri}
	}
	return code, nil
}

// Contains reports whether uri is indexed.
func (ix *Index) Contains(uri string) bool {
	_, ok := ix.codes[uri]
	return ok
}

// URIOf returns the URI assigned to code.
func (ix *Index) URIOf(code int) (string, error) {
	if code < 0 || code >= len(ix.uris) {
		return "", &UnknownTrackError{Code: code, ByCode: true}
	}
	return ix.uris[code], nil
}

// URIs returns a copy of the indexed URIs ordered by code.
func (ix *Index) URIs() []string {
	out := make([]string, len(ix.uris))
	copy(out, ix.uris)
	return out
}
