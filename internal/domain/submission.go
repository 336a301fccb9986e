package domain

import "strings"

// Form field names with a meaning beyond address data.
const (
	FieldAddressID      = "addressId"
	FieldDefaultAddress = "defaultAddress"
)

// Intent is the transport-level intent of a form submission.
type Intent int

const (
	// IntentSave covers create and update submissions.
	IntentSave Intent = iota
	// IntentDelete is set when the request asked for deletion.
	IntentDelete
)

// String returns the name of the intent.
func (i Intent) String() string {
	if i == IntentDelete {
		return "delete"
	}
	return "save"
}

// Submission is one submitted address form.
type Submission struct {
	Intent Intent
	Form   map[string]string
	// Locale is the optional route locale prefix, e.g. "en-us".
	Locale string
}

// AddressID returns the submitted addressId field and whether it was present.
func (s Submission) AddressID() (string, bool) {
	id, ok := s.Form[FieldAddressID]
	return id, ok
}

// WantsDefault reports whether the defaultAddress marker is set to a truthy value.
func (s Submission) WantsDefault() bool {
	v, ok := s.Form[FieldDefaultAddress]
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

// Outcome is the normalized result of a dispatched submission. Exactly one of
// RedirectTo and FormError is set.
type Outcome struct {
	RedirectTo string `json:"redirect_to,omitempty"`
	FormError  string `json:"formError,omitempty"`
}

// Redirect returns a successful outcome.
func Redirect(target string) *Outcome {
	return &Outcome{RedirectTo: target}
}

// Failure returns an outcome carrying a message for display next to the form.
func Failure(message string) *Outcome {
	return &Outcome{FormError: message}
}

// Failed reports whether the outcome is a failure.
func (o *Outcome) Failed() bool {
	return o.FormError != ""
}

// AccountPath returns the account root for the given locale prefix.
func AccountPath(locale string) string {
	if locale == "" {
		return "/account"
	}
	return "/" + strings.Trim(locale, "/") + "/account"
}
