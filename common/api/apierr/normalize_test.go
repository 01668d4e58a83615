package apierr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PlainString(t *testing.T) {
	n := Normalize(http.StatusBadRequest, []byte(`"something broke"`))

	assert.Equal(t, VariantPlainMessage, n.Variant)
	assert.Equal(t, "something broke", n.UserMessage)
	assert.Empty(t, n.FieldErrors)
	assert.Empty(t, n.NonFieldErrors)
	assert.False(t, n.HasErrors())
}

func TestNormalize_NonJSONBody(t *testing.T) {
	n := Normalize(http.StatusBadGateway, []byte("  upstream timeout \n"))

	assert.Equal(t, VariantPlainMessage, n.Variant)
	assert.Equal(t, "upstream timeout", n.UserMessage)
}

func TestNormalize_TopLevelFieldErrors(t *testing.T) {
	body := `{"severity":["Severity should be in uppercase!","Invalid severity!"],"source":"Source should be in lowercase!"}`
	n := Normalize(http.StatusBadRequest, []byte(body))

	assert.Equal(t, VariantFieldErrors, n.Variant)
	assert.Equal(t, "Severity should be in uppercase!, Invalid severity!", n.FieldErrors["severity"])
	assert.Equal(t, "Source should be in lowercase!", n.FieldErrors["source"])
	assert.Equal(t, []string{"severity", "source"}, n.Fields)
	assert.Contains(t, n.UserMessage, "severity: Severity should be in uppercase!")
}

func TestNormalize_NestedErrorIgnoresSiblings(t *testing.T) {
	body := `{"error":{"end_date":["End date cannot be earlier than start date!"]},"status":["ignored"]}`
	n := Normalize(http.StatusBadRequest, []byte(body))

	require.Len(t, n.FieldErrors, 1)
	assert.Equal(t, "End date cannot be earlier than start date!", n.FieldErrors["end_date"])
	assert.NotContains(t, n.FieldErrors, "status")
	assert.Equal(t, "Request failed: end_date: End date cannot be earlier than start date!", n.UserMessage)
}

func TestNormalize_NestedNonFieldString(t *testing.T) {
	n := Normalize(http.StatusBadRequest, []byte(`{"error":{"non_field_errors":"bad request"}}`))

	assert.Equal(t, []string{"bad request"}, n.NonFieldErrors)
	assert.Empty(t, n.FieldErrors)
	assert.Equal(t, VariantFieldErrors, n.Variant)
	assert.Equal(t, "Validation error: bad request", n.UserMessage)
}

func TestNormalize_NonFieldOrderPreserved(t *testing.T) {
	body := `{"non_field_errors":["first","second"],"source":["bad"]}`
	n := Normalize(http.StatusBadRequest, []byte(body))

	assert.Equal(t, VariantMixed, n.Variant)
	assert.Equal(t, []string{"first", "second"}, n.NonFieldErrors)
	assert.Equal(t, "Validation error: first, second", n.UserMessage)
}

func TestNormalize_NoLogsExistDomainMessages(t *testing.T) {
	cases := map[string]string{
		"start_date": "Please choose a different date range.",
		"end_date":   "Please choose a different date range.",
		"severity":   "Please choose a different severity.",
		"source":     "Please choose a different source.",
	}
	for field, want := range cases {
		t.Run(field, func(t *testing.T) {
			body := `{"` + field + `":["No logs exist for date"]}`
			n := Normalize(http.StatusBadRequest, []byte(body))
			assert.Contains(t, n.UserMessage, want)
		})
	}
}

func TestNormalize_DomainMessageBeatsNonField(t *testing.T) {
	body := `{"error":{"non_field_errors":["No logs exist for date"],"start_date":["No logs exist for date"]}}`
	n := Normalize(http.StatusBadRequest, []byte(body))

	assert.Equal(t, "No logs exist for the selected start date. Please choose a different date range.", n.UserMessage)
}

func TestNormalize_NotFoundMessage(t *testing.T) {
	n := Normalize(http.StatusNotFound, []byte(`{}`))
	assert.Equal(t, MsgNoResults, n.UserMessage)

	n = Normalize(http.StatusNotFound, nil)
	assert.Equal(t, MsgNoResults, n.UserMessage)
}

func TestNormalize_GenericFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Server exploded"}`, "Request failed: Server exploded"},
		{"message", `{"message":"Try later"}`, "Request failed: Try later"},
		{"error string", `{"error":"Database down"}`, "Request failed: Database down"},
		{"empty object", `{}`, "Request failed: " + MsgGeneric},
		{"empty body", ``, "Request failed: " + MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(http.StatusInternalServerError, []byte(tt.body))
			assert.Equal(t, tt.want, n.UserMessage)
		})
	}
}

func TestNormalize_NonStringValuesStringified(t *testing.T) {
	n := Normalize(http.StatusBadRequest, []byte(`{"page":[3, true],"meta":{"a":1}}`))

	assert.Equal(t, "3, true", n.FieldErrors["page"])
	assert.Equal(t, `{"a":1}`, n.FieldErrors["meta"])
}

func TestNormalize_TopLevelArray(t *testing.T) {
	n := Normalize(http.StatusBadRequest, []byte(`["Invalid page."]`))

	assert.Equal(t, []string{"Invalid page."}, n.NonFieldErrors)
	assert.Equal(t, "Validation error: Invalid page.", n.UserMessage)
}
