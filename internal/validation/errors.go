package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Errors collects field violations in the order they are found per field.
type Errors struct {
	Fields map[string][]string
}

func newErrors() *Errors {
	return &Errors{Fields: make(map[string][]string)}
}

func (e *Errors) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *Errors) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *Errors) Empty() bool {
	return len(e.Fields) == 0
}

// Error lists the violated fields alphabetically.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// orNil keeps a typed nil out of the error interface.
func (e *Errors) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// BodyError reports a problem with the request body as a whole.
func BodyError(message string) *Errors {
	errs := newErrors()
	errs.Add(FieldBody, message)
	return errs
}
