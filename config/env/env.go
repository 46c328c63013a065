// Package env provides a few helpers to load in environment variables
// with defaults, keeping track of required variables that are missing.
package env

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/circleci/setupwiz/config/secret"
)

type Var struct {
	env      string
	envType  string
	def      interface{}
	required bool
}

func (f Var) String() string {
	def := fmt.Sprintf("(%v)", f.def)
	if f.required {
		def = "required"
	}
	return fmt.Sprintf("%-40s %-12s %s", f.env, f.envType, def)
}

func (f Var) Name() string {
	return f.env
}

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

type Loader struct {
	lookup  LookupFunc
	vars    map[string]Var // a map of all the vars this loader has been asked to load
	missing []string
	err     error
}

// NewLoader returns a loader reading variables through lookup, os.LookupEnv for the
// process environment.
func NewLoader(lookup LookupFunc) *Loader {
	return &Loader{
		lookup: lookup,
		vars:   make(map[string]Var),
	}
}

// Err returns every problem found so far, or nil.
func (l *Loader) Err() error {
	return l.err
}

// Missing returns the required variables that were unset or blank, in the order they were asked for.
func (l *Loader) Missing() []string {
	return append([]string(nil), l.missing...)
}

// value returns the trimmed value of env, and false if it is unset or blank.
func (l *Loader) value(env string) (string, bool) {
	val, ok := l.lookup(env)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (l *Loader) require(env string, present bool) {
	if present {
		return
	}
	l.missing = append(l.missing, env)
	l.err = multierror.Append(l.err, fmt.Errorf("env var: %q is required", env))
}

// String inspects the env var given by env. If it is present and not blank it will
// set the contents of fld.
func (l *Loader) String(fld *string, env string) {
	l.addVar(*fld, env, "string", false)
	if val, ok := l.value(env); ok {
		*fld = val
	}
}

// RequiredString is String, but records env as missing if it is unset or blank.
func (l *Loader) RequiredString(fld *string, env string) {
	l.addVar(*fld, env, "string", true)
	val, ok := l.value(env)
	l.require(env, ok)
	if ok {
		*fld = val
	}
}

// RequiredSecret is RequiredString for a sensitive value. The value is used as given,
// without trimming, since whitespace may be part of a password.
func (l *Loader) RequiredSecret(fld *secret.String, env string) {
	l.addVar(*fld, env, "secret", true)
	_, ok := l.value(env)
	l.require(env, ok)
	if ok {
		raw, _ := l.lookup(env)
		*fld = secret.String(raw)
	}
}

// Verbatim is String without trimming, for values such as URIs that must be used
// exactly as given. A blank value still leaves fld alone.
func (l *Loader) Verbatim(fld *string, env string) {
	l.addVar(*fld, env, "string", false)
	if _, ok := l.value(env); ok {
		*fld, _ = l.lookup(env)
	}
}

// Int inspects the env var given by env. If it is present it is parsed as per Atoi
// to set the contents of fld. If the parse fails the content of fld is left unaltered,
// so the default wins.
func (l *Loader) Int(fld *int, env string) {
	l.addVar(*fld, env, "int", false)
	l.parseInt(fld, env)
}

// RequiredInt is Int, but records env as missing if it is unset or blank.
func (l *Loader) RequiredInt(fld *int, env string) {
	l.addVar(*fld, env, "int", true)
	_, ok := l.value(env)
	l.require(env, ok)
	l.parseInt(fld, env)
}

func (l *Loader) parseInt(fld *int, env string) {
	val, ok := l.value(env)
	if !ok {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return
	}
	*fld = i
}

// Flag sets fld to true only when env is the literal "true", and false otherwise.
func (l *Loader) Flag(fld *bool, env string) {
	l.addVar(*fld, env, "bool", false)
	val, _ := l.value(env)
	*fld = val == "true"
}

type Vars []Var

// Sort the vars v in place alphabetically
func (v Vars) Sort() {
	sort.Slice(v, func(i, j int) bool {
		return v[i].env < v[j].env
	})
}

// VarsUsed lists every var the loader was asked for, alphabetically. Secret defaults
// stay redacted and long string defaults are cut short.
func (l *Loader) VarsUsed() Vars {
	vars := make(Vars, 0, len(l.vars))
	const maxDefaultLen = 80
	for _, v := range l.vars {
		if def, ok := v.def.(string); ok {
			def = strings.ReplaceAll(def, "\n", "\\n")
			if len(def) > maxDefaultLen {
				def = def[:maxDefaultLen] + " ..."
			}
			v.def = def
		}
		vars = append(vars, v)
	}
	vars.Sort()
	return vars
}

func (l *Loader) addVar(def interface{}, env, envType string, required bool) {
	if _, ok := l.vars[env]; ok {
		panic("duplicate environment variable " + env)
	}
	l.vars[env] = Var{
		env:      env,
		envType:  envType,
		def:      def,
		required: required,
	}
}
