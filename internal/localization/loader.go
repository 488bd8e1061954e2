// Package localization loads the static code→display-name tables for
// currencies and languages. Tables are populated once at startup and are
// read-only afterwards, so they are safe for concurrent lookups.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
)

//go:embed assets/*.json
var embedded embed.FS

// Kind names one of the two tables.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindLanguage Kind = "language"
)

// Table maps a code to its localized name.
type Table struct {
	names map[string]string
}

// NewTable copies m into a Table.
func NewTable(m map[string]string) Table {
	names := make(map[string]string, len(m))
	for k, v := range m {
		names[k] = v
	}
	return Table{names: names}
}

// Lookup returns the localized name for code, or code itself when unknown.
func (t Table) Lookup(code string) string {
	if name, ok := t.names[code]; ok && name != "" {
		return name
	}
	return code
}

// Len reports the number of entries.
func (t Table) Len() int {
	return len(t.names)
}

// Source returns the filesystem the tables are read from: dir when set,
// otherwise the embedded defaults.
func Source(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		// embedded layout is fixed at build time
		panic(err)
	}
	return sub
}

// Load reads <kind>_<lang>.json for both kinds from fsys.
func Load(fsys fs.FS, lang string) (currency, language Table, err error) {
	currency, err = LoadTable(fsys, KindCurrency, lang)
	if err != nil {
		return Table{}, Table{}, err
	}
	language, err = LoadTable(fsys, KindLanguage, lang)
	if err != nil {
		return Table{}, Table{}, err
	}
	return currency, language, nil
}

// LoadTable reads a single flat JSON object of string values.
func LoadTable(fsys fs.FS, kind Kind, lang string) (Table, error) {
	name := fmt.Sprintf("%s_%s.json", kind, lang)

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Table{}, fmt.Errorf("load %s table: %w", kind, err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return NewTable(m), nil
}

// LoadOrDegrade is Load without the failure: a table that cannot be read is
// replaced by an empty one, so its lookups show raw codes.
func LoadOrDegrade(fsys fs.FS, lang string) (currency, language Table) {
	var err error
	if currency, err = LoadTable(fsys, KindCurrency, lang); err != nil {
		log.Printf("ERROR: %v; currency names fall back to codes", err)
		currency = NewTable(nil)
	}
	if language, err = LoadTable(fsys, KindLanguage, lang); err != nil {
		log.Printf("ERROR: %v; language names fall back to codes", err)
		language = NewTable(nil)
	}
	log.Printf("INFO: localization tables loaded: %d currencies, %d languages", currency.Len(), language.Len())
	return currency, language
}
