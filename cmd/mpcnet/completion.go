package main

import (
	"slices"
	"strings"

	"github.com/posener/complete"

	"github.com/difegue/mpcnet/internal/filter"
)

// whereKeywords are the non-tag words understood by parseWhere.
var whereKeywords = []string{"file", "base", "modified-since", "AudioFormat", "not", "and", "==", "!=", "contains", "=~"}

// shellCommands are offered as the first word in the shell.
var shellCommands = []string{
	"add", "addid", "clear", "consume", "currentsong", "delete", "find", "findadd",
	"getvol", "idle", "list", "listall", "listplaylist", "listplaylists", "next",
	"pause", "ping", "play", "playlistadd", "playlistdelete", "playlistinfo",
	"previous", "quit", "search", "searchadd", "setvol", "stats", "status", "stop",
	"tagtypes", "update",
}

// completeWords returns the words that start with partial.
func completeWords(words []string, partial string) []string {
	var results []string
	for _, w := range words {
		if strings.HasPrefix(w, partial) {
			results = append(results, w)
		}
	}
	return results
}

func completeTags(partial string) []string {
	return completeWords(filter.TagNames(), partial)
}

func completeTerms(partial string) []string {
	return completeWords(slices.Concat(filter.TagNames(), whereKeywords), partial)
}

// tagPredictor implements complete.Predictor for tag names.
type tagPredictor struct{}

func newTagPredictor() complete.Predictor {
	return &tagPredictor{}
}

// Predict implements complete.Predictor interface.
func (p *tagPredictor) Predict(args complete.Args) []string {
	return completeTags(args.Last)
}

// termPredictor completes filter terms: tags, operators and keywords.
type termPredictor struct{}

func newTermPredictor() complete.Predictor {
	return &termPredictor{}
}

// Predict implements complete.Predictor interface.
func (p *termPredictor) Predict(args complete.Args) []string {
	return completeTerms(args.Last)
}

// shellCompleter completes command names, then filter terms, in the shell.
type shellCompleter struct{}

func newShellCompleter() *shellCompleter {
	return &shellCompleter{}
}

// Do implements readline.AutoCompleter. It returns the missing suffix of
// every candidate and the length of the word being completed.
func (c *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start := strings.LastIndexByte(head, ' ') + 1
	partial := head[start:]

	candidates := completeTerms(partial)
	if strings.TrimSpace(head[:start]) == "" {
		candidates = completeWords(shellCommands, partial)
	}

	out := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, []rune(cand[len(partial):]+" "))
	}
	return out, len([]rune(partial))
}
