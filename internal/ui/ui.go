// Package ui provides formatted output utilities for the CLI.
package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/difegue/mpcnet/internal/command"
)

// Color functions for consistent styling.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc() // Dimmed text (more readable than gray)
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

// FormatEndpoint formats endpoint with blue color.
func FormatEndpoint(endpoint string) string {
	return Blue(endpoint)
}

// StateBadge returns a colored player state indicator with label.
func StateBadge(state string) string {
	switch state {
	case "play":
		return Green("▶ Playing")
	case "pause":
		return Yellow("⏸ Paused")
	case "stop":
		return Dim("■ Stopped")
	default:
		return Red("? Unknown")
	}
}

// FormatSeconds renders a seconds value such as "187.352" as m:ss, or
// h:mm:ss past an hour. Unparseable input is returned unchanged.
func FormatSeconds(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return s
	}
	total := int(math.Floor(f))
	h, m, sec := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// FormatSong renders a song as "Artist - Title", falling back to the
// file URI when tags are missing.
func FormatSong(song command.Record) string {
	artist, title := song.Get("Artist"), song.Get("Title")
	switch {
	case artist != "" && title != "":
		return Cyan(artist) + " - " + title
	case title != "":
		return title
	default:
		return song.Get("file")
	}
}

// PrintStatus prints player status and the current song in a formatted style.
func PrintStatus(status, song command.Record) {
	fmt.Fprintf(Output, "%s %s\n", Bold("State:"), StateBadge(status.Get("state")))

	if len(song) > 0 {
		fmt.Fprintf(Output, "%s %s\n", Bold("Song:"), FormatSong(song))
		if album := song.Get("Album"); album != "" {
			fmt.Fprintf(Output, "%s %s\n", Bold("Album:"), album)
		}
	}

	if elapsed := status.Get("elapsed"); elapsed != "" {
		position := FormatSeconds(elapsed)
		if duration := status.Get("duration"); duration != "" {
			position += " / " + FormatSeconds(duration)
		}
		fmt.Fprintf(Output, "%s %s\n", Bold("Time:"), position)
	}

	if pos := status.Get("song"); pos != "" {
		fmt.Fprintf(Output, "%s %s/%s\n", Bold("Queue:"), nextIndex(pos), status.Get("playlistlength"))
	}

	if volume := status.Get("volume"); volume != "" && volume != "-1" {
		fmt.Fprintf(Output, "%s %s%%\n", Bold("Volume:"), volume)
	}

	fmt.Fprintf(Output, "%s repeat %s  random %s  single %s  consume %s\n",
		Bold("Modes:"),
		flag(status.Get("repeat")),
		flag(status.Get("random")),
		flag(status.Get("single")),
		flag(status.Get("consume")),
	)

	if msg := status.Get("error"); msg != "" {
		fmt.Fprintf(Output, "%s %s\n", Bold("Error:"), Red(msg))
	}
}

// nextIndex turns a 0-based position into a 1-based one for display.
func nextIndex(pos string) string {
	n, err := strconv.Atoi(pos)
	if err != nil {
		return pos
	}
	return strconv.Itoa(n + 1)
}

func flag(v string) string {
	switch v {
	case "1":
		return Green("on")
	case "oneshot":
		return Yellow("oneshot")
	default:
		return Dim("off")
	}
}

// PrintSongs prints a numbered song list.
func PrintSongs(songs []command.Record) {
	if len(songs) == 0 {
		fmt.Fprintln(Output, "No songs.")
		return
	}

	for i, song := range songs {
		fmt.Fprintf(Output, "%s %s\n", Dim(fmt.Sprintf("%3d.", i+1)), FormatSong(song))
	}
}

// PrintQueue prints the play queue, marking the current position.
func PrintQueue(songs []command.Record, current string) {
	if len(songs) == 0 {
		fmt.Fprintln(Output, "Queue is empty.")
		return
	}

	fmt.Fprintln(Output, Bold("Queue:"))
	for i, song := range songs {
		marker := " "
		if song.Get("Pos") == current && current != "" {
			marker = Green("▶")
		}
		fmt.Fprintf(Output, "%s %s %s\n", marker, Dim(fmt.Sprintf("%3d.", i+1)), FormatSong(song))
	}
}

// PrintValues prints a titled list of plain values.
func PrintValues(title string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(Output, "No %s.\n", title)
		return
	}

	fmt.Fprintln(Output, Bold(title+":"))
	for _, v := range values {
		fmt.Fprintf(Output, "  %s\n", v)
	}
}

// PrintRecord prints every pair of a record as "key: value".
func PrintRecord(rec command.Record) {
	for _, p := range rec {
		fmt.Fprintf(Output, "%s %s\n", Bold(p.Key+":"), p.Value)
	}
}

// PrintDirectories prints a directory tree as returned by listall.
func PrintDirectories(dirs []command.Directory) {
	for _, d := range dirs {
		fmt.Fprintf(Output, "%s %s\n", Blue(d.Name+"/"), Dim(fmt.Sprintf("(%d files)", len(d.Files))))
		for _, f := range d.Files {
			fmt.Fprintf(Output, "  %s\n", f)
		}
	}
}

// PrintPlaylists prints stored playlists with their modification time.
func PrintPlaylists(playlists []command.Record) {
	if len(playlists) == 0 {
		fmt.Fprintln(Output, "No playlists.")
		return
	}

	fmt.Fprintln(Output, Bold("Playlists:"))
	for _, p := range playlists {
		line := "  " + Cyan(p.Get("playlist"))
		if modified := p.Get("Last-Modified"); modified != "" {
			line += " " + Dim("("+modified+")")
		}
		fmt.Fprintln(Output, line)
	}
}

// PrintSuccess prints a success message with green checkmark.
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", Green("✓"), message)
}

// PrintError prints an error message with red X.
func PrintError(message string) {
	fmt.Fprintf(Output, "%s %s\n", Red("✗"), message)
}

// PrintWarning prints a warning message with yellow exclamation.
func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", Yellow("⚠"), message)
}

// PrintInfo prints an info message with blue dot.
func PrintInfo(message string) {
	fmt.Fprintf(Output, "%s %s\n", Blue("•"), message)
}
