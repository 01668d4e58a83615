package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   Values
		want map[Field]string
	}{
		{"valid", Values{"disk full", "ERROR", "storage"}, map[Field]string{}},
		{"blank message", Values{"   ", "INFO", "app"}, map[Field]string{Message: MsgMessageRequired}},
		{"all empty", Values{}, map[Field]string{
			Message:  MsgMessageRequired,
			Severity: MsgSeverityRequired,
			Source:   MsgSourceRequired,
		}},
		{"wrong case", Values{"", "info", "DB1"}, map[Field]string{
			Message:  MsgMessageRequired,
			Severity: MsgSeverityUpper,
			Source:   MsgSourceLower,
		}},
		{"blank source", Values{"m", "INFO", "  "}, map[Field]string{Source: MsgSourceRequired}},
		{"digits", Values{"m", "INFO2", "db2"}, map[Field]string{
			Severity: MsgSeverityUpper,
			Source:   MsgSourceLower,
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Validate(c.in))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "WARNING", canonicalize(Severity, "warning"))
	assert.Equal(t, "network", canonicalize(Source, "NetWork"))
	assert.Equal(t, "Keep Case", canonicalize(Message, "Keep Case"))
}
