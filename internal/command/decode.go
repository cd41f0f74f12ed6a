package command

import (
	"path"
	"strings"

	"github.com/difegue/mpcnet/internal/protocol"
)

// Scalar returns the value of the first pair with key, or "" when absent.
func Scalar(key string) DecodeFunc[string] {
	return func(resp *protocol.Response) (string, error) {
		v, _ := resp.Get(key)
		return v, nil
	}
}

// Values returns all values of a repeating key in arrival order.
func Values(key string) DecodeFunc[[]string] {
	return func(resp *protocol.Response) ([]string, error) {
		return resp.Values(key), nil
	}
}

// AllValues returns the value of every pair in arrival order.
func AllValues(resp *protocol.Response) ([]string, error) {
	out := make([]string, 0, resp.Len())
	for _, p := range resp.Pairs {
		out = append(out, p.Value)
	}
	return out, nil
}

// Ack ignores the response body; it is used by action commands.
func Ack(*protocol.Response) (struct{}, error) {
	return struct{}{}, nil
}

// Joined renders every pair as "key: value" joined by ", ".
func Joined(resp *protocol.Response) (string, error) {
	parts := make([]string, 0, resp.Len())
	for _, p := range resp.Pairs {
		parts = append(parts, p.Key+protocol.PairSeparator+p.Value)
	}
	return strings.Join(parts, ", "), nil
}

// Record is one record of a record list, pairs in arrival order.
type Record []protocol.Pair

// Get returns the first value for key.
func (r Record) Get(key string) string {
	for _, p := range r {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Values returns every value for key (multi-valued tags repeat).
func (r Record) Values(key string) []string {
	var out []string
	for _, p := range r {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Records splits the response into records, starting a new record at every
// occurrence of startKey. Pairs before the first startKey are dropped.
func Records(startKey string) DecodeFunc[[]Record] {
	return func(resp *protocol.Response) ([]Record, error) {
		var (
			out     []Record
			current Record
		)
		for _, p := range resp.Pairs {
			if p.Key == startKey {
				if current != nil {
					out = append(out, current)
				}
				current = Record{p}
				continue
			}
			if current != nil {
				current = append(current, p)
			}
		}
		if current != nil {
			out = append(out, current)
		}
		return out, nil
	}
}

// SingleRecord decodes a response that holds a single record (status,
// currentsong, stats).
func SingleRecord(resp *protocol.Response) (Record, error) {
	rec := make(Record, len(resp.Pairs))
	copy(rec, resp.Pairs)
	return rec, nil
}

// Directory is a database directory and the files directly inside it.
type Directory struct {
	Path  string
	Name  string
	Files []string
}

// NewDirectory returns a directory named after the last element of p, or
// "root" for the database root.
func NewDirectory(p string) Directory {
	name := path.Base(strings.TrimSuffix(p, "/"))
	if p == "" || name == "." || name == "/" {
		name = "root"
	}
	return Directory{Path: p, Name: name}
}

// Directories groups file entries under the directory entry preceding them.
// Files listed before any directory belong to the root.
func Directories(resp *protocol.Response) ([]Directory, error) {
	out := []Directory{NewDirectory("")}
	for _, p := range resp.Pairs {
		switch p.Key {
		case "directory":
			out = append(out, NewDirectory(p.Value))
		case "file":
			last := &out[len(out)-1]
			last.Files = append(last.Files, p.Value)
		}
	}
	if len(out[0].Files) == 0 && len(out) > 1 {
		out = out[1:]
	}
	return out, nil
}
