package keyword

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/shmel1k/rftarantool/internal/util"
)

var ErrInvalidArguments = errors.New("invalid keyword arguments")

// Args holds the arguments of a single keyword call
// bound to the declared parameters.
type Args struct {
	values map[string]interface{}
	kwargs map[string]interface{}
}

// Bind matches positional and named arguments against the keyword parameters.
func Bind(kw *Keyword, positional []interface{}, named map[string]interface{}) (Args, error) {
	if len(positional) > len(kw.Params) {
		return Args{}, fmt.Errorf("%w: keyword '%s' expects at most %d arguments, got %d",
			ErrInvalidArguments, kw.Name, len(kw.Params), len(positional))
	}

	args := Args{
		values: make(map[string]interface{}, len(kw.Params)),
		kwargs: make(map[string]interface{}),
	}
	for i, v := range positional {
		args.values[kw.Params[i].Name] = v
	}

	declared := make(map[string]struct{}, len(kw.Params))
	for _, p := range kw.Params {
		declared[p.Name] = struct{}{}
	}

	// Iterate in a stable order to produce deterministic errors.
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := named[name]
		if _, ok := declared[name]; !ok {
			if !kw.Kwargs {
				return Args{}, fmt.Errorf("%w: keyword '%s' got unexpected named argument '%s'",
					ErrInvalidArguments, kw.Name, name)
			}
			args.kwargs[name] = v
			continue
		}
		if _, set := args.values[name]; set {
			return Args{}, fmt.Errorf("%w: keyword '%s' got multiple values for argument '%s'",
				ErrInvalidArguments, kw.Name, name)
		}
		args.values[name] = v
	}

	missing := make([]string, 0)
	for _, p := range kw.Params {
		if _, set := args.values[p.Name]; set {
			continue
		}
		if !p.HasDefault {
			missing = append(missing, p.Name)
			continue
		}
		args.values[p.Name] = p.Default
	}
	if len(missing) > 0 {
		return Args{}, fmt.Errorf("%w: keyword '%s' missing value for argument(s) %s",
			ErrInvalidArguments, kw.Name, strings.Join(missing, ", "))
	}

	return args, nil
}

// Value returns the raw value of the argument.
func (a Args) Value(name string) interface{} {
	return a.values[name]
}

// String returns the argument as a string, nil becomes an empty string.
func (a Args) String(name string) (string, error) {
	v := a.values[name]
	if v == nil {
		return "", nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: argument '%s': %v", ErrInvalidArguments, name, err)
	}

	return s, nil
}

// Uint32 returns the argument as a base 10 uint32.
func (a Args) Uint32(name string) (uint32, error) {
	v, err := util.ToUint64(a.values[name])
	if err != nil {
		return 0, fmt.Errorf("%w: argument '%s': %v", ErrInvalidArguments, name, err)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: argument '%s': %d overflows uint32", ErrInvalidArguments, name, v)
	}

	return uint32(v), nil
}

func (a Args) Int(name string) (int, error) {
	v, err := util.ToInt64(a.values[name])
	if err != nil {
		return 0, fmt.Errorf("%w: argument '%s': %v", ErrInvalidArguments, name, err)
	}

	return int(v), nil
}

// List returns the argument as a list. A scalar becomes a single element list.
func (a Args) List(name string) []interface{} {
	switch t := a.values[name].(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return t
	case []string:
		res := make([]interface{}, 0, len(t))
		for _, s := range t {
			res = append(res, s)
		}
		return res
	default:
		return []interface{}{t}
	}
}

// Kwarg returns an undeclared named argument.
func (a Args) Kwarg(name string) (interface{}, bool) {
	v, ok := a.kwargs[name]
	return v, ok
}

// Kwargs returns names of all undeclared named arguments.
func (a Args) Kwargs() []string {
	names := make([]string, 0, len(a.kwargs))
	for name := range a.kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
