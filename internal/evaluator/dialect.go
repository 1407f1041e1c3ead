package evaluator

import (
	"fmt"
	"sort"
)

// Dialect fixes the language level choices for one run.
type Dialect struct {
	Name         string
	ShortCircuit bool // && and || skip the right operand when the left decides
	Lazy         bool // untyped assignments and parameters bind thunks
	Exceptions   bool // raise, try/catch, and catchable div0 / invalid_input
	NotCoercion  bool // ! accepts an int operand
	GlobalScope  bool // main's outer scopes are visible from every function
}

var (
	Brewin = Dialect{Name: "brewin"}

	BrewinPlus = Dialect{Name: "brewin+", NotCoercion: true}

	BrewinSharp = Dialect{
		Name:         "brewin#",
		ShortCircuit: true,
		Lazy:         true,
		Exceptions:   true,
		NotCoercion:  true,
	}

	DefaultDialect = BrewinSharp
)

var dialects = map[string]Dialect{
	Brewin.Name:      Brewin,
	BrewinPlus.Name:  BrewinPlus,
	BrewinSharp.Name: BrewinSharp,
}

func LookupDialect(name string) (Dialect, error) {
	if name == "" {
		return DefaultDialect, nil
	}
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown dialect %q (known: %v)", name, DialectNames())
	}
	return d, nil
}

func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
