package calc

import "sort"

// Entry is one named value in an environment.
type Entry struct {
	// Name is the unique key of the entry.
	Name string
	// Value is the entry's value.
	Value float64
	// IsConst marks the value as fixed after declaration.
	IsConst bool
}

// Env is a mapping from name to value for one calculator session. It
// is not safe to use an Env concurrently.
type Env struct {
	names map[string]Entry
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{names: make(map[string]Entry)}
}

// Lookup returns the value of a name. Returns an UndefinedNameError if
// the name is not declared.
func (env *Env) Lookup(name string) (float64, error) {
	e, ok := env.names[name]
	if !ok {
		return 0, &UndefinedNameError{Name: name}
	}
	return e.Value, nil
}

// IsConst reports whether name is declared as a constant. A name that
// is not declared at all is not a constant.
func (env *Env) IsConst(name string) bool {
	return env.names[name].IsConst
}

// IsDeclared reports whether name is declared.
func (env *Env) IsDeclared(name string) bool {
	_, ok := env.names[name]
	return ok
}

// Define inserts or unconditionally overwrites an entry. Callers that
// need const protection must check IsConst first; Define itself never
// fails.
func (env *Env) Define(name string, value float64, isConst bool) {
	env.names[name] = Entry{Name: name, Value: value, IsConst: isConst}
}

// Assign overwrites the value of an existing non-const entry. Returns
// an UndefinedNameError if the name is not declared and a
// ConstAssignError if it is declared const.
func (env *Env) Assign(name string, value float64) error {
	e, ok := env.names[name]
	if !ok {
		return &UndefinedNameError{Name: name}
	}
	if e.IsConst {
		return &ConstAssignError{Name: name}
	}
	e.Value = value
	env.names[name] = e
	return nil
}

// Len returns the number of declared names.
func (env *Env) Len() int {
	return len(env.names)
}

// Entries returns all entries sorted by name.
func (env *Env) Entries() []Entry {
	v := make([]Entry, 0, len(env.names))
	for _, e := range env.names {
		v = append(v, e)
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Name < v[j].Name })
	return v
}
