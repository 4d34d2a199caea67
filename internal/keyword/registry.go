package keyword

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrKeywordExists   = errors.New("keyword is already registered")
	ErrKeywordNotFound = errors.New("no keyword with such name")
)

// Param declares a single keyword argument.
type Param struct {
	Name string

	// Default is used when the argument is omitted.
	// Params without a default value are required.
	Default    interface{}
	HasDefault bool
}

// Required declares an argument which must be passed.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares an argument with a default value.
func Optional(name string, def interface{}) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Func is the implementation of a keyword.
type Func func(ctx context.Context, args Args) (interface{}, error)

type Keyword struct {
	Name   string
	Doc    string
	Tags   []string
	Params []Param

	// Kwargs allows named arguments which are not declared in Params.
	Kwargs bool

	Run Func
}

// ArgSpec returns the argument specification in the
// format of the Robot Framework remote library interface.
func (k *Keyword) ArgSpec() []string {
	spec := make([]string, 0, len(k.Params)+1)
	for _, p := range k.Params {
		if !p.HasDefault {
			spec = append(spec, p.Name)
			continue
		}
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		spec = append(spec, p.Name+"="+def)
	}
	if k.Kwargs {
		spec = append(spec, "**kwargs")
	}

	return spec
}

// Registry maps keyword names to their implementations.
// Names are matched ignoring case, spaces and underscores.
type Registry struct {
	mu       sync.RWMutex
	keywords map[string]*Keyword
	names    []string
}

func NewRegistry() *Registry {
	return &Registry{
		keywords: make(map[string]*Keyword),
	}
}

func (r *Registry) Register(kw Keyword) error {
	if kw.Name == "" || kw.Run == nil {
		return fmt.Errorf("keyword must have a name and an implementation")
	}

	key := Normalize(kw.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exist := r.keywords[key]; exist {
		return fmt.Errorf("%w: %s", ErrKeywordExists, kw.Name)
	}

	r.keywords[key] = &kw
	r.names = append(r.names, kw.Name)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kws ...Keyword) {
	for _, kw := range kws {
		if err := r.Register(kw); err != nil {
			panic(err)
		}
	}
}

// Names returns names of all registered keywords sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	r.mu.RUnlock()

	sort.Strings(names)

	return names
}

func (r *Registry) Lookup(name string) (*Keyword, error) {
	r.mu.RLock()
	kw, ok := r.keywords[Normalize(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrKeywordNotFound, name)
	}

	return kw, nil
}

// Run binds the arguments to the keyword parameters and calls the keyword.
func (r *Registry) Run(ctx context.Context, name string, positional []interface{}, named map[string]interface{}) (interface{}, error) {
	kw, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	args, err := Bind(kw, positional, named)
	if err != nil {
		return nil, err
	}

	return kw.Run(ctx, args)
}

// Normalize converts a keyword name to the form used for lookups.
func Normalize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '_' || r == '\t' {
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
