package command

import "strconv"

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Play starts playback at the current song.
func Play() Descriptor[struct{}] {
	return New("play", Ack)
}

// PlayPos starts playback at queue position pos.
func PlayPos(pos int) Descriptor[struct{}] {
	return New("play", Ack, strconv.Itoa(pos))
}

// Pause toggles pause.
func Pause() Descriptor[struct{}] {
	return New("pause", Ack)
}

// SetPause pauses or resumes explicitly.
func SetPause(paused bool) Descriptor[struct{}] {
	return New("pause", Ack, boolArg(paused))
}

// Stop stops playback.
func Stop() Descriptor[struct{}] {
	return New("stop", Ack)
}

// Next plays the next song in the queue.
func Next() Descriptor[struct{}] {
	return New("next", Ack)
}

// Previous plays the previous song in the queue.
func Previous() Descriptor[struct{}] {
	return New("previous", Ack)
}

// Consume toggles consume mode.
func Consume() Descriptor[string] {
	return New("consume", Joined)
}

// SetConsume turns consume mode on or off.
func SetConsume(on bool) Descriptor[string] {
	return New("consume", Joined, boolArg(on))
}

// GetVol returns the current volume, or "" when the daemon has no mixer.
func GetVol() Descriptor[string] {
	return New("getvol", Scalar("volume"))
}

// SetVol sets the volume to vol (0-100).
func SetVol(vol int) Descriptor[struct{}] {
	return New("setvol", Ack, strconv.Itoa(vol))
}

// Status returns the player status.
func Status() Descriptor[Record] {
	return New("status", SingleRecord)
}

// CurrentSong returns the song being played.
func CurrentSong() Descriptor[Record] {
	return New("currentsong", SingleRecord)
}

// Stats returns database and uptime statistics.
func Stats() Descriptor[Record] {
	return New("stats", SingleRecord)
}
