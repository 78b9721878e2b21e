// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package playlist

// TrackEntry is a single track appearance inside a playlist.
type TrackEntry struct {
	URI        string
	ArtistName string
	TrackName  string
}

// Playlist is a nested playlist record as supplied by ingestion.
type Playlist struct {
	ID          int
	Name        string
	Tracks      []TrackEntry
	NumHoldouts *int
}

// IsChallenge reports whether the playlist belongs to the evaluation partition.
func (p *Playlist) IsChallenge() bool {
	return p.NumHoldouts != nil
}

// RawInteractionRecord is one flattened (track appearance, playlist) row.
type RawInteractionRecord struct {
	TrackURI    string
	ArtistName  string
	TrackName   string
	PlaylistID  int
	NumHoldouts *int
}

// IsTraining reports whether the row belongs to the training partition.
func (r *RawInteractionRecord) IsTraining() bool {
	return r.NumHoldouts == nil
}

// Holdouts returns a pointer to n, for building challenge playlists.
func Holdouts(n int) *int {
	return &n
}

// Split partitions rows into training and challenge rows, preserving order.
//
//nolint:gocritic // rangeValCopy: records are small and copied into the output anyway
func Split(rows []RawInteractionRecord) (training, challenge []RawInteractionRecord) {
	for _, r := range rows {
		if r.IsTraining() {
			training = append(training, r)
		} else {
			challenge = append(challenge, r)
		}
	}
	return training, challenge
}

// URIs returns the track URI of every row, in row order.
func URIs(rows []RawInteractionRecord) []string {
	uris := make([]string, len(rows))
	for i := range rows {
		uris[i] = rows[i].TrackURI
	}
	return uris
}

// ChallengeIDs returns the ids of challenge playlists in first-seen order,
// including playlists with no track entries.
func ChallengeIDs(playlists []Playlist) []int {
	var ids []int
	seen := make(map[int]struct{})
	for i := range playlists {
		pl := &playlists[i]
		if !pl.IsChallenge() {
			continue
		}
		if _, ok := seen[pl.ID]; ok {
			continue
		}
		seen[pl.ID] = struct{}{}
		ids = append(ids, pl.ID)
	}
	return ids
}
