package calc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Snapshot is a serializable picture of an environment together with
// the display precision it was written at. The encoding is one header
// line "Precision = N" followed by one "name = value is_const = 0|1"
// line per entry.
type Snapshot struct {
	Precision int
	Entries   []Entry
}

// WriteSnapshot encodes a snapshot. Values are written with the
// snapshot's precision.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Precision = %d\n", snap.Precision)
	for _, e := range snap.Entries {
		c := 0
		if e.IsConst {
			c = 1
		}
		fmt.Fprintf(bw, "%s = %.*f is_const = %d\n", e.Name, snap.Precision, e.Value, c)
	}
	return bw.Flush()
}

// ReadSnapshot decodes a snapshot. Blank lines between entries are
// tolerated.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	sc := bufio.NewScanner(r)
	var snap Snapshot
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return snap, err
		}
		return snap, errors.New("empty snapshot")
	}
	f := strings.Fields(sc.Text())
	if len(f) != 3 || f[0] != "Precision" || f[1] != "=" {
		return snap, fmt.Errorf("bad snapshot header %q", sc.Text())
	}
	prec, err := strconv.Atoi(f[2])
	if err != nil {
		return snap, fmt.Errorf("bad snapshot precision %q", f[2])
	}
	snap.Precision = prec
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		f := strings.Fields(text)
		if len(f) != 6 || f[1] != "=" || f[3] != "is_const" || f[4] != "=" {
			return snap, fmt.Errorf("bad snapshot entry on line %d: %q", line, text)
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return snap, fmt.Errorf("bad value on line %d: %q", line, f[2])
		}
		c, err := strconv.Atoi(f[5])
		if err != nil {
			return snap, fmt.Errorf("bad is_const flag on line %d: %q", line, f[5])
		}
		snap.Entries = append(snap.Entries, Entry{Name: f[0], Value: v, IsConst: c != 0})
	}
	return snap, sc.Err()
}

// Resolution is a choice for a snapshot entry whose name is already
// declared in the environment.
type Resolution int

const (
	// KeepExisting leaves the environment entry untouched.
	KeepExisting Resolution = iota
	// Overwrite replaces the environment entry with the snapshot's.
	Overwrite
	// Rename keeps both, defining the snapshot's value under a fresh
	// name derived from the original.
	Rename
)

// ConflictFunc decides what to do with a snapshot entry whose name is
// already declared. existing is the current environment entry and
// incoming the snapshot's.
type ConflictFunc func(existing, incoming Entry) Resolution

// MergeAction is the per-entry outcome of MergeSnapshot.
type MergeAction int

const (
	// MergeDefined means the name was undeclared and was defined.
	MergeDefined MergeAction = iota
	// MergeKept means the existing entry was left untouched.
	MergeKept
	// MergeOverwrote means the existing entry was replaced.
	MergeOverwrote
	// MergeRenamed means the snapshot entry was defined under a fresh
	// name.
	MergeRenamed
)

// MergeResult reports what happened to one snapshot entry.
type MergeResult struct {
	// Entry is the snapshot entry as decoded.
	Entry Entry
	// Action is what MergeSnapshot did with it.
	Action MergeAction
	// RenamedTo is the fresh name of a MergeRenamed entry.
	RenamedTo string
}

// MergeSnapshot loads snapshot entries into env. Undeclared names are
// defined directly; for declared names, resolve picks the outcome. A
// nil resolve keeps every existing entry.
func MergeSnapshot(env *Env, snap Snapshot, resolve ConflictFunc) []MergeResult {
	results := make([]MergeResult, 0, len(snap.Entries))
	for _, in := range snap.Entries {
		if !env.IsDeclared(in.Name) {
			env.Define(in.Name, in.Value, in.IsConst)
			results = append(results, MergeResult{Entry: in, Action: MergeDefined})
			continue
		}
		val, _ := env.Lookup(in.Name)
		existing := Entry{Name: in.Name, Value: val, IsConst: env.IsConst(in.Name)}
		r := KeepExisting
		if resolve != nil {
			r = resolve(existing, in)
		}
		switch r {
		case Overwrite:
			env.Define(in.Name, in.Value, in.IsConst)
			results = append(results, MergeResult{Entry: in, Action: MergeOverwrote})
		case Rename:
			fresh := renameFor(env, in.Name)
			env.Define(fresh, in.Value, in.IsConst)
			results = append(results, MergeResult{Entry: in, Action: MergeRenamed, RenamedTo: fresh})
		default:
			results = append(results, MergeResult{Entry: in, Action: MergeKept})
		}
	}
	return results
}

// renameFor finds a fresh name for a renamed snapshot entry:
// name_file, then name_file1, name_file2, and so on.
func renameFor(env *Env, name string) string {
	fresh := name + "_file"
	for n := 1; env.IsDeclared(fresh); n++ {
		fresh = name + "_file" + strconv.Itoa(n)
	}
	return fresh
}
