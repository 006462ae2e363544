package client

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/httpstream/urls"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	err := en_translations.RegisterDefaultTranslations(validate, translator)
	if err != nil {
		panic(err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

type requiredFields struct {
	URL  *url.URL `json:"URL" validate:"required"`
	Verb Verb     `json:"verb" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
}

// Resolved is a validated request as it goes on the wire.
type Resolved struct {
	URL    *url.URL
	Verb   Verb
	Header http.Header
}

// Validate checks the configuration and, on success, caches the resolved
// URL returned by [Request.ResolvedURL]. It re-runs on every call. An
// empty result means the request is ready to execute.
func (r *Request) Validate() ValidationErrors {
	r.resolved = nil

	errs := validateFields(requiredFields{URL: r.cfg.baseURL, Verb: r.cfg.verb})
	if r.cfg.modeConflict {
		errs = append(errs, &ConfigError{Field: "mode", Err: ErrSSEAndStreaming})
	}
	if r.cfg.payloadConflict {
		errs = append(errs, &ConfigError{Field: "data", Err: ErrDataAndHandler})
	}

	if r.cfg.baseURL != nil {
		u, err := r.resolveURL()
		if err != nil {
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			r.resolved = u
		}
	}

	for _, err := range errs {
		r.debug("Validation error: " + err.Error())
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Resolve validates the request and computes its final URL, wire verb
// and merged headers.
func (r *Request) Resolve() (Resolved, error) {
	resolved, errs := r.resolve()
	if len(errs) > 0 {
		return Resolved{}, errs
	}
	return resolved, nil
}

func (r *Request) resolve() (Resolved, ValidationErrors) {
	if errs := r.Validate(); len(errs) > 0 {
		return Resolved{}, errs
	}

	verb := r.cfg.verb
	header := r.mergeHeaders()
	if verb == PATCH {
		verb = POST
		header.Set("X-HTTP-Method-Override", string(PATCH))
	}

	u := *r.resolved
	return Resolved{URL: &u, Verb: verb, Header: header}, nil
}

func (r *Request) resolveURL() (*url.URL, *ConfigError) {
	u := *r.cfg.baseURL
	target := &u

	if r.cfg.path != nil {
		joined := urls.CombineURL(target, *r.cfg.path)
		parsed, err := url.Parse(joined)
		if err != nil {
			return nil, &ConfigError{
				Field: "path",
				Msg:   fmt.Sprintf("joining path[%s]: %v", *r.cfg.path, err),
				Err:   err,
			}
		}
		target = parsed
	}

	if len(r.cfg.query) > 0 {
		q := make(url.Values, len(r.cfg.query))
		for k, v := range r.cfg.query {
			q.Set(k, v)
		}

		encoded := q.Encode()
		if target.RawQuery != "" {
			target.RawQuery += "&" + encoded
		} else {
			target.RawQuery = encoded
		}
	}

	return target, nil
}

// mergeHeaders applies the accumulated headers, then the multi-value
// mutator, then appends the simple mutator's entries.
func (r *Request) mergeHeaders() http.Header {
	merged := make(map[string][]string, len(r.cfg.headers))
	for k, v := range r.cfg.headers {
		merged[k] = append([]string(nil), v...)
	}

	if r.cfg.multiHeaders != nil {
		r.cfg.multiHeaders(merged)
	}

	if r.cfg.simpleHeaders != nil {
		simple := make(map[string]string)
		r.cfg.simpleHeaders(simple)
		for k, v := range simple {
			merged[k] = append(merged[k], v)
		}
	}

	header := make(http.Header, len(merged))
	for k, vals := range merged {
		for _, v := range vals {
			header.Add(k, v)
		}
	}

	return header
}

func validateFields(val any) ValidationErrors {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Err: err}}
	}

	var fields ValidationErrors
	for _, verror := range verrors {
		fields = append(fields, customErrForTag(verror.Tag(), verror))
	}

	return fields
}

func customErrForTag(tag string, verror validator.FieldError) *ConfigError {
	field := verror.Field()

	switch {
	case tag == "required" && field == "URL":
		return &ConfigError{Field: field, Err: ErrURLRequired}
	case tag == "required" && field == "verb":
		return &ConfigError{Field: field, Err: ErrVerbRequired}
	case tag == "oneof":
		return &ConfigError{Field: field, Msg: verror.Translate(translator), Err: ErrUnsupportedVerb}
	default:
		return &ConfigError{Field: field, Msg: verror.Translate(translator), Err: ErrInvalidConfig}
	}
}
