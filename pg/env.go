package pg

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Vars is a variable environment. Values are ints, bools, strings or
// []any channel contents; the compiler never inspects them.
type Vars map[string]any

// Clone returns a shallow copy of v with channel slices copied.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		if q, ok := val.([]any); ok {
			val = append([]any(nil), q...)
		}
		out[k] = val
	}
	return out
}

// Env is the canonical frozen form of a Vars value: JSON with sorted keys.
// Two environments with the same bindings freeze to the same Env.
type Env string

// EmptyEnv is the environment without bindings.
const EmptyEnv Env = "{}"

// Freeze canonicalizes v.
func Freeze(v Vars) (Env, error) {
	keys := maps.Keys(v)
	slices.Sort(keys)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return "", errors.Wrapf(err, "freezing variable %q", k)
		}
		vb, err := json.Marshal(v[k])
		if err != nil {
			return "", errors.Wrapf(err, "freezing variable %q", k)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return Env(buf.String()), nil
}

// Vars decodes e. Integral numbers decode to int.
func (e Env) Vars() (Vars, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(e)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "decoding environment %s", string(e))
	}
	out := make(Vars, len(raw))
	for k, val := range raw {
		out[k] = thaw(val)
	}
	return out, nil
}

func thaw(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = thaw(x[i])
		}
		return x
	default:
		return v
	}
}

func (e Env) String() string {
	return string(e)
}

// State is a transition-system state compiled from a program graph.
type State[L comparable] struct {
	Loc L
	Env Env
}

func (s State[L]) String() string {
	return fmt.Sprintf("[%v, %s]", s.Loc, s.Env)
}
