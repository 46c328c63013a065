// Package secret holds credentials so they never leak into logs, spans or rendered pages.
package secret

type String string

const redacted = "REDACTED"

// String implements fmt.Stringer and redacts the sensitive value.
func (s String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer and redacts the sensitive value.
func (s String) GoString() string {
	return redacted
}

// Raw returns the sensitive value as a string.
func (s String) Raw() string {
	return string(s)
}

// MarshalJSON redacts the value in any JSON output.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Set reports whether the secret holds a non-empty value.
func (s String) Set() bool {
	return s != ""
}
