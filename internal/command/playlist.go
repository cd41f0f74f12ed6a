package command

import (
	"strconv"

	"github.com/difegue/mpcnet/internal/protocol"
)

// PlaylistAdd appends uri to a stored playlist.
func PlaylistAdd(playlist, uri string) Descriptor[string] {
	return New("playlistadd", Joined, protocol.Quote(playlist), protocol.Quote(uri))
}

// PlaylistAddAt inserts uri at position pos of a stored playlist.
func PlaylistAddAt(playlist, uri string, pos int) Descriptor[string] {
	return New("playlistadd", Joined, protocol.Quote(playlist), protocol.Quote(uri), strconv.Itoa(pos))
}

// PlaylistDelete removes the song at pos from a stored playlist.
func PlaylistDelete(playlist string, pos int) Descriptor[string] {
	return New("playlistdelete", Joined, protocol.Quote(playlist), strconv.Itoa(pos))
}

// PlaylistDeleteRange removes the songs in [start, end) from a stored
// playlist.
func PlaylistDeleteRange(playlist string, start, end int) Descriptor[string] {
	return New("playlistdelete", Joined, protocol.Quote(playlist), Window{Start: start, End: end}.String())
}

// ListPlaylists returns the stored playlists.
func ListPlaylists() Descriptor[[]Record] {
	return New("listplaylists", Records("playlist"))
}

// ListPlaylist returns the URIs of a stored playlist.
func ListPlaylist(playlist string) Descriptor[[]string] {
	return New("listplaylist", Values("file"), protocol.Quote(playlist))
}
