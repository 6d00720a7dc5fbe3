package grammar

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Options is the grammar-level configuration record. It carries the
// debug flag, the action-embedded-expression path list, and how
// generated code names the runtime package.
type Options struct {
	// Debug is copied to the compiled module's Debug field for
	// emitters. Module.Dump renders whether or not it is set.
	Debug bool `toml:"debug"`

	// ParseMacros is the list of dotted invocation paths whose
	// arguments are action-embedded expressions. In this host every
	// invocation's argument list already is one, so the self-rewriter
	// descends into all of them; the list is recorded configuration
	// for emitters targeting hosts whose macro interiors are opaque
	// token soup and need the carve-out. A nil list means
	// DefaultParseMacros.
	ParseMacros []string `toml:"parse_macros"`

	// RuntimePath, when non-empty, is the import path emitted code
	// should use for the runtime package instead of the default.
	RuntimePath string `toml:"runtime"`
}

// DefaultParseMacros is the default list of invocation paths treated
// as action-embedded expressions: the common formatting and debug
// helpers.
var DefaultParseMacros = []string{
	"fmt.Sprint",
	"fmt.Sprintf",
	"fmt.Errorf",
	"fmt.Print",
	"fmt.Printf",
	"fmt.Println",
	"log.Printf",
	"log.Println",
}

// DefaultOptions returns the options an unconfigured grammar gets.
func DefaultOptions() Options {
	return Options{
		ParseMacros: DefaultParseMacros,
	}
}

// Macros returns the effective path list: ParseMacros if set,
// otherwise the default list.
func (o Options) Macros() []string {
	if o.ParseMacros == nil {
		return DefaultParseMacros
	}
	return o.ParseMacros
}

// LoadOptionsFile reads an Options record from a TOML file. Keys not
// present keep their defaults.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}

	opts := DefaultOptions()
	if err := toml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return opts, nil
}
