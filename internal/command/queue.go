package command

import (
	"strconv"

	"github.com/difegue/mpcnet/internal/protocol"
)

// Add appends a song or directory to the queue.
func Add(uri string) Descriptor[string] {
	return New("add", Joined, protocol.Quote(uri))
}

// AddAt inserts a song or directory at position pos of the queue.
func AddAt(uri string, pos int) Descriptor[string] {
	return New("add", Joined, protocol.Quote(uri), strconv.Itoa(pos))
}

// AddID appends a song and returns its queue id.
func AddID(uri string) Descriptor[string] {
	return New("addid", Scalar("Id"), protocol.Quote(uri))
}

// AddIDAt inserts a song at pos and returns its queue id.
func AddIDAt(uri string, pos int) Descriptor[string] {
	return New("addid", Scalar("Id"), protocol.Quote(uri), strconv.Itoa(pos))
}

// Delete removes the song at pos from the queue.
func Delete(pos int) Descriptor[struct{}] {
	return New("delete", Ack, strconv.Itoa(pos))
}

// DeleteRange removes the songs in [start, end) from the queue.
func DeleteRange(start, end int) Descriptor[struct{}] {
	return New("delete", Ack, Window{Start: start, End: end}.String())
}

// Clear empties the queue.
func Clear() Descriptor[struct{}] {
	return New("clear", Ack)
}

// PlaylistInfo lists the songs of the queue.
func PlaylistInfo() Descriptor[[]Record] {
	return New("playlistinfo", Records("file"))
}
