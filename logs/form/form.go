// Package form drives the create and edit flow for a single log record:
// local validation, touched-state for display, and mapping server
// rejections back onto fields.
package form

import (
	"context"
	"errors"
	"strings"

	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/rs/zerolog/log"
)

const (
	MsgFixBeforeSubmit = "Please correct the validation errors before submitting."
	MsgFixBelow        = "Please correct the validation errors below."
	MsgUnexpected      = "An unexpected error occurred. Please try again."
	MsgCreated         = "Log created successfully!"
	MsgUpdated         = "Log updated successfully!"
)

// ErrInvalid is returned by Submit when local validation blocks the request.
var ErrInvalid = errors.New("form has validation errors")

// API is what the form needs from the client.
type API interface {
	GetLog(ctx context.Context, id int) (*models.LogRecord, error)
	CreateLog(ctx context.Context, in models.LogInput) (*models.LogRecord, error)
	UpdateLog(ctx context.Context, id int, in models.LogInput) (*models.LogRecord, error)
}

// Form is the state of one create or edit session. It is not safe for
// concurrent use.
type Form struct {
	id       int
	values   Values
	errors   map[string]string
	nonField []string
	message  string
	notice   string
	touched  map[Field]bool
}

// New returns an empty create form. Severity starts at INFO.
func New() *Form {
	f := &Form{
		values:  Values{Severity: models.SeverityInfo},
		errors:  map[string]string{},
		touched: map[Field]bool{},
	}
	f.revalidate()
	return f
}

// Load fetches record id for editing. A missing record is an error here. On
// failure the returned form carries the message to show.
func Load(ctx context.Context, api API, id int) (*Form, error) {
	f := New()
	f.id = id

	log.Debug().Str("component", "form").Int("id", id).Msg("Fetching log for editing")

	rec, err := api.GetLog(ctx, id)
	if err != nil {
		f.message = apierr.UserMessage(err, MsgUnexpected)
		log.Error().Err(err).Str("component", "form").Int("id", id).Msg("Failed to load log for editing")
		return f, err
	}

	f.values = Values{Message: rec.Message, Severity: rec.Severity, Source: rec.Source}
	f.TouchAll()
	f.errors = map[string]string{}
	f.revalidate()
	return f, nil
}

// ID is the record being edited, or 0 in create mode.
func (f *Form) ID() int { return f.id }

// IsEdit reports whether Submit will update rather than create.
func (f *Form) IsEdit() bool { return f.id != 0 }

// Values returns the current field values.
func (f *Form) Values() Values { return f.values }

// Set changes one field as a user would: severity and source are converted to
// the case the server expects, that field's error is cleared, and fresh
// local errors are merged in.
func (f *Form) Set(field Field, raw string) {
	f.values.set(field, canonicalize(field, raw))
	delete(f.errors, string(field))
	f.revalidate()
}

// Fill replaces all values verbatim, without case conversion.
func (f *Form) Fill(v Values) {
	f.values = v
	for _, field := range Fields {
		delete(f.errors, string(field))
	}
	f.revalidate()
}

// Touch marks field as interacted with, so its error becomes visible.
func (f *Form) Touch(field Field) {
	f.touched[field] = true
}

// TouchAll marks every field touched.
func (f *Form) TouchAll() {
	for _, field := range Fields {
		f.touched[field] = true
	}
}

// Touched reports whether field has been touched.
func (f *Form) Touched(field Field) bool {
	return f.touched[field]
}

// Errors returns every field error, touched or not. Keys are API field
// names, so server errors for fields the form has no input for are kept too.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// VisibleErrors returns the errors of touched fields plus any server error
// not tied to a form input.
func (f *Form) VisibleErrors() map[string]string {
	out := map[string]string{}
	for k, v := range f.errors {
		if isInput(k) && !f.touched[Field(k)] {
			continue
		}
		out[k] = v
	}
	return out
}

// NonFieldErrors returns the server's non-field errors from the last submit.
func (f *Form) NonFieldErrors() []string {
	return append([]string(nil), f.nonField...)
}

// Message is the banner error, empty when there is none.
func (f *Form) Message() string { return f.message }

// Notice is the success message after a submit.
func (f *Form) Notice() string { return f.notice }

// Valid reports whether local validation passes.
func (f *Form) Valid() bool {
	return len(Validate(f.values)) == 0
}

// Submit creates or updates the record. Local validation failures return
// ErrInvalid without calling the API.
func (f *Form) Submit(ctx context.Context, api API) (*models.LogRecord, error) {
	f.TouchAll()
	f.notice = ""

	if local := Validate(f.values); len(local) > 0 {
		for k, v := range local {
			f.errors[string(k)] = v
		}
		f.message = MsgFixBeforeSubmit
		log.Debug().Str("component", "form").Int("errors", len(local)).Msg("Submit blocked by validation errors")
		return nil, ErrInvalid
	}

	f.errors = map[string]string{}
	f.message = ""
	f.nonField = nil

	in := models.LogInput{Message: f.values.Message, Severity: f.values.Severity, Source: f.values.Source}

	var rec *models.LogRecord
	var err error
	if f.IsEdit() {
		rec, err = api.UpdateLog(ctx, f.id, in)
	} else {
		rec, err = api.CreateLog(ctx, in)
	}
	if err != nil {
		f.applyServerError(err)
		return nil, err
	}

	if f.IsEdit() {
		f.notice = MsgUpdated
		log.Info().Str("component", "form").Int("id", rec.ID).Msg("Log updated successfully")
	} else {
		f.notice = MsgCreated
		f.id = rec.ID
		log.Info().Str("component", "form").Int("id", rec.ID).Msg("Log created successfully")
	}
	f.values = Values{Message: rec.Message, Severity: rec.Severity, Source: rec.Source}
	return rec, nil
}

func (f *Form) applyServerError(err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		f.message = MsgUnexpected
		return
	}

	p := apiErr.Payload
	if p.Variant == apierr.VariantEmpty || p.Variant == apierr.VariantPlainMessage || apiErr.Kind == apierr.KindNotFoundMissing {
		f.message = apiErr.Message
		return
	}

	for k, v := range p.FieldErrors {
		f.errors[k] = v
	}
	f.nonField = append([]string(nil), p.NonFieldErrors...)
	if len(f.nonField) > 0 {
		f.message = "Validation error: " + strings.Join(f.nonField, ", ")
	} else {
		f.message = MsgFixBelow
	}
}

func (f *Form) revalidate() {
	for k, v := range Validate(f.values) {
		f.errors[string(k)] = v
	}
}

func isInput(key string) bool {
	for _, field := range Fields {
		if string(field) == key {
			return true
		}
	}
	return false
}
