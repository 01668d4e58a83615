package form

import (
	"regexp"
	"strings"
)

// Field names a form input. Values match the API's JSON keys.
type Field string

const (
	Message  Field = "message"
	Severity Field = "severity"
	Source   Field = "source"
)

// Fields lists the inputs in display order.
var Fields = []Field{Message, Severity, Source}

const (
	MsgMessageRequired  = "Message is required"
	MsgSeverityRequired = "Severity is required"
	MsgSeverityUpper    = "Severity must be uppercase"
	MsgSourceRequired   = "Source is required"
	MsgSourceLower      = "Source must be lowercase"
)

var (
	upperOnly = regexp.MustCompile(`^[A-Z]+$`)
	lowerOnly = regexp.MustCompile(`^[a-z]+$`)
)

// Values are the editable fields of a log record.
type Values struct {
	Message  string `json:"message" yaml:"message"`
	Severity string `json:"severity" yaml:"severity"`
	Source   string `json:"source" yaml:"source"`
}

func (v Values) get(f Field) string {
	switch f {
	case Message:
		return v.Message
	case Severity:
		return v.Severity
	case Source:
		return v.Source
	}
	return ""
}

func (v *Values) set(f Field, s string) {
	switch f {
	case Message:
		v.Message = s
	case Severity:
		v.Severity = s
	case Source:
		v.Source = s
	}
}

// Validate returns one message per failing field. An empty map means valid.
func Validate(v Values) map[Field]string {
	errs := map[Field]string{}

	if strings.TrimSpace(v.Message) == "" {
		errs[Message] = MsgMessageRequired
	}

	switch {
	case v.Severity == "":
		errs[Severity] = MsgSeverityRequired
	case !upperOnly.MatchString(v.Severity):
		errs[Severity] = MsgSeverityUpper
	}

	switch {
	case strings.TrimSpace(v.Source) == "":
		errs[Source] = MsgSourceRequired
	case !lowerOnly.MatchString(v.Source):
		errs[Source] = MsgSourceLower
	}

	return errs
}

// canonicalize applies the case the server expects.
func canonicalize(f Field, raw string) string {
	switch f {
	case Severity:
		return strings.ToUpper(raw)
	case Source:
		return strings.ToLower(raw)
	}
	return raw
}
