package filter

import (
	"fmt"
	"strings"
)

// Tag is a song metadata tag known to the daemon.
type Tag string

// Tags supported in filter expressions and list commands.
const (
	Artist                    Tag = "Artist"
	ArtistSort                Tag = "ArtistSort"
	Album                     Tag = "Album"
	AlbumSort                 Tag = "AlbumSort"
	AlbumArtist               Tag = "AlbumArtist"
	AlbumArtistSort           Tag = "AlbumArtistSort"
	Title                     Tag = "Title"
	Track                     Tag = "Track"
	Name                      Tag = "Name"
	Genre                     Tag = "Genre"
	Date                      Tag = "Date"
	OriginalDate              Tag = "OriginalDate"
	Composer                  Tag = "Composer"
	Performer                 Tag = "Performer"
	Conductor                 Tag = "Conductor"
	Work                      Tag = "Work"
	Grouping                  Tag = "Grouping"
	Comment                   Tag = "Comment"
	Disc                      Tag = "Disc"
	Label                     Tag = "Label"
	MusicBrainzArtistID       Tag = "MUSICBRAINZ_ARTISTID"
	MusicBrainzAlbumID        Tag = "MUSICBRAINZ_ALBUMID"
	MusicBrainzAlbumArtistID  Tag = "MUSICBRAINZ_ALBUMARTISTID"
	MusicBrainzTrackID        Tag = "MUSICBRAINZ_TRACKID"
	MusicBrainzReleaseTrackID Tag = "MUSICBRAINZ_RELEASETRACKID"
	MusicBrainzWorkID         Tag = "MUSICBRAINZ_WORKID"

	// Any matches any tag value.
	Any Tag = "any"
)

var allTags = []Tag{
	Artist, ArtistSort, Album, AlbumSort, AlbumArtist, AlbumArtistSort,
	Title, Track, Name, Genre, Date, OriginalDate, Composer, Performer,
	Conductor, Work, Grouping, Comment, Disc, Label,
	MusicBrainzArtistID, MusicBrainzAlbumID, MusicBrainzAlbumArtistID,
	MusicBrainzTrackID, MusicBrainzReleaseTrackID, MusicBrainzWorkID,
	Any,
}

// Tags returns all known tags in a stable order.
func Tags() []Tag {
	out := make([]Tag, len(allTags))
	copy(out, allTags)
	return out
}

// TagNames returns the names of all known tags.
func TagNames() []string {
	names := make([]string, len(allTags))
	for i, t := range allTags {
		names[i] = string(t)
	}
	return names
}

// ParseTag resolves a tag name case-insensitively.
func ParseTag(name string) (Tag, error) {
	for _, t := range allTags {
		if strings.EqualFold(string(t), name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", name)
}
