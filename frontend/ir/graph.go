package ir

import "sort"

// Graph is the flat table produced by cross-referencing: the single
// source of truth for all later lookups. It is built once and not
// mutated after type checking starts, apart from the write-once target
// slots on body nodes.
type Graph struct {
	Identifiables  map[Key]Identifiable
	EntrypointPath string
	BuiltinsPath   string
}

func (g *Graph) Lookup(file, name string) (Identifiable, bool) {
	identifiable, ok := g.Identifiables[Key{File: file, Name: name}]
	return identifiable, ok
}

// Functions returns every function in the graph sorted by position, so
// per-function checking produces a reproducible error sequence.
func (g *Graph) Functions() []*Function {
	var functions []*Function
	for _, identifiable := range g.Identifiables {
		if function, ok := identifiable.(*Function); ok {
			functions = append(functions, function)
		}
	}
	sort.Slice(functions, func(i, j int) bool {
		return functions[i].Pos().Before(functions[j].Pos())
	})
	return functions
}
