package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"
)

var (
	version = "dev"
	commit  = "none"
)

type CLI struct {
	Globals

	Status  StatusCmd  `cmd:"" help:"Show player status"`
	Current CurrentCmd `cmd:"" help:"Show the current song"`
	Stats   StatsCmd   `cmd:"" help:"Show database statistics"`

	Play    PlayCmd    `cmd:"" help:"Start playback"`
	Pause   PauseCmd   `cmd:"" help:"Toggle pause"`
	Stop    StopCmd    `cmd:"" help:"Stop playback"`
	Next    NextCmd    `cmd:"" help:"Play the next song"`
	Prev    PrevCmd    `cmd:"" help:"Play the previous song"`
	Volume  VolumeCmd  `cmd:"" help:"Show or set the volume"`
	Consume ConsumeCmd `cmd:"" help:"Show or set consume mode"`

	Add    AddCmd    `cmd:"" help:"Add a song or directory to the queue"`
	Delete DeleteCmd `cmd:"" name:"del" help:"Remove songs from the queue"`
	Clear  ClearCmd  `cmd:"" help:"Clear the queue"`
	Queue  QueueCmd  `cmd:"" help:"Show the queue"`

	Find   FindCmd   `cmd:"" help:"Find songs by exact tag values"`
	Search SearchCmd `cmd:"" help:"Search songs by tag substrings"`
	Where  WhereCmd  `cmd:"" help:"Find songs with a filter expression"`
	List   ListCmd   `cmd:"" help:"List unique tag values"`
	Ls     LsCmd     `cmd:"" help:"List directories and files"`
	Update UpdateCmd `cmd:"" help:"Rescan the music database"`

	Playlist PlaylistCmd `cmd:"" help:"Manage stored playlists"`
	Batch    BatchCmd    `cmd:"" help:"Send raw commands as one command list"`
	Shell    ShellCmd    `cmd:"" help:"Interactive shell for raw commands"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version            VersionCmd                   `cmd:"" help:"Show version"`
}

func main() {
	cli := CLI{}
	parser := kong.Must(&cli,
		kong.Name("mpcnet"),
		kong.Description("Command-line client for the Music Player Daemon"),
		kong.UsageOnError(),
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("tag", newTagPredictor()),
		kongplete.WithPredictor("term", newTermPredictor()),
	)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(&cli.Globals)
	stop()
	os.Exit(exitCode(err))
}

// exitCode prints err and returns the process exit code for it.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		}
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitError
}
