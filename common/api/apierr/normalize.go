package apierr

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/valyala/fastjson"
)

// Variant tags the shape a payload was normalized from, so callers switch on
// it instead of probing the payload again.
type Variant int

const (
	// VariantEmpty: no usable payload.
	VariantEmpty Variant = iota
	// VariantPlainMessage: the payload was a bare string.
	VariantPlainMessage
	// VariantFieldErrors: structured errors of one kind, either per-field or non-field.
	VariantFieldErrors
	// VariantMixed: both per-field and non-field errors.
	VariantMixed
)

const (
	nonFieldKey      = "non_field_errors"
	nestedKey        = "error"
	noLogsExist      = "No logs exist"
	validationPrefix = "Validation error: "
)

var domainMessages = []struct {
	field   string
	message string
}{
	{"start_date", "No logs exist for the selected start date. Please choose a different date range."},
	{"end_date", "No logs exist for the selected end date. Please choose a different date range."},
	{"severity", "No logs with the selected severity level. Please choose a different severity."},
	{"source", "No logs from the selected source. Please choose a different source."},
}

// Normalized is the stable internal shape of a server error payload.
// Fields keeps the field keys in payload order.
type Normalized struct {
	Variant        Variant
	FieldErrors    map[string]string
	Fields         []string
	NonFieldErrors []string
	UserMessage    string
}

// HasErrors reports whether any field or non-field error was found.
func (n Normalized) HasErrors() bool {
	return len(n.FieldErrors) > 0 || len(n.NonFieldErrors) > 0
}

// Normalize maps a raw error body to a Normalized value. The top-level shape
// decides the path: a string is the whole message; an object with a nested
// "error" object is read from the nested object only.
func Normalize(status int, body []byte) Normalized {
	n := Normalized{
		FieldErrors:    map[string]string{},
		NonFieldErrors: []string{},
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		n.UserMessage = userMessage(status, n, MsgUnknown)
		return n
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(trimmed)
	if err != nil {
		// Not JSON; the body itself is the message.
		n.Variant = VariantPlainMessage
		n.UserMessage = string(trimmed)
		return n
	}

	switch v.Type() {
	case fastjson.TypeString:
		n.Variant = VariantPlainMessage
		n.UserMessage = string(v.GetStringBytes())
		return n
	case fastjson.TypeArray:
		n.NonFieldErrors = append(n.NonFieldErrors, messages(v)...)
	case fastjson.TypeObject:
		target := v.GetObject()
		if nested := v.Get(nestedKey); nested != nil && nested.Type() == fastjson.TypeObject {
			target = nested.GetObject()
		}
		collect(target, &n)
	}

	switch {
	case len(n.FieldErrors) > 0 && len(n.NonFieldErrors) > 0:
		n.Variant = VariantMixed
	case n.HasErrors():
		n.Variant = VariantFieldErrors
	}

	n.UserMessage = userMessage(status, n, describe(v))
	return n
}

func collect(obj *fastjson.Object, n *Normalized) {
	obj.Visit(func(key []byte, val *fastjson.Value) {
		k := string(key)
		if k == nestedKey {
			return
		}
		msgs := messages(val)
		if len(msgs) == 0 {
			return
		}
		if k == nonFieldKey {
			n.NonFieldErrors = append(n.NonFieldErrors, msgs...)
			return
		}
		if _, seen := n.FieldErrors[k]; !seen {
			n.Fields = append(n.Fields, k)
		}
		n.FieldErrors[k] = strings.Join(msgs, ", ")
	})
}

func userMessage(status int, n Normalized, described string) string {
	for _, dm := range domainMessages {
		if msg, ok := n.FieldErrors[dm.field]; ok && strings.Contains(msg, noLogsExist) {
			return dm.message
		}
	}
	if len(n.NonFieldErrors) > 0 {
		return validationPrefix + strings.Join(n.NonFieldErrors, ", ")
	}
	if status == http.StatusNotFound {
		return MsgNoResults
	}
	return "Request failed: " + described
}

// describe extracts one readable line from a payload. Used when nothing more
// specific applies.
func describe(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeArray:
		return strings.Join(messages(v), ", ")
	case fastjson.TypeObject:
	default:
		return MsgUnknown
	}

	if nfe := v.Get(nonFieldKey); nfe != nil {
		return strings.Join(messages(nfe), ", ")
	}

	if nested := v.Get(nestedKey); nested != nil {
		switch nested.Type() {
		case fastjson.TypeString:
			return string(nested.GetStringBytes())
		case fastjson.TypeObject:
			if nfe := nested.Get(nonFieldKey); nfe != nil {
				return strings.Join(messages(nfe), ", ")
			}
			var first string
			nested.GetObject().Visit(func(key []byte, val *fastjson.Value) {
				if first == "" {
					first = string(key) + ": " + strings.Join(messages(val), ", ")
				}
			})
			if first != "" {
				return first
			}
			return "Validation error occurred"
		}
	}

	for _, key := range []string{"message", "detail"} {
		if s := v.GetStringBytes(key); len(s) > 0 {
			return string(s)
		}
	}

	var parts []string
	v.GetObject().Visit(func(key []byte, val *fastjson.Value) {
		if string(key) == nestedKey {
			return
		}
		parts = append(parts, string(key)+": "+strings.Join(messages(val), ", "))
	})
	if len(parts) > 0 {
		return strings.Join(parts, "; ")
	}
	return MsgGeneric
}

// messages flattens a string, array or other JSON value to message strings.
func messages(v *fastjson.Value) []string {
	if v.Type() != fastjson.TypeArray {
		return []string{stringify(v)}
	}
	items := v.GetArray()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}
