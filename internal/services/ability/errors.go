package ability

import (
	"fmt"
	"strings"
)

// CSVError means the response body was not valid quoted CSV
type CSVError struct {
	Err error
}

func (e *CSVError) Error() string {
	return fmt.Sprintf("failed to parse ability csv: %v", e.Err)
}

func (e *CSVError) Unwrap() error {
	return e.Err
}

// RecordError means a row lacked a name or value, or the value was not 0-255
type RecordError struct {
	Record []string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("error parsing ability from csv record %q", e.Record)
}

// NoAbilityError means no row matched the prefix
type NoAbilityError struct {
	Prefix string
}

func (e *NoAbilityError) Error() string {
	return fmt.Sprintf("no ability %s was found", e.Prefix)
}

// UniquenessError means more than one row matched the prefix.
// Candidates holds every matching name so the caller can ask for something more specific.
type UniquenessError struct {
	Prefix     string
	Candidates []string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("multiple abilities [%s] match %s", strings.Join(e.Candidates, ", "), e.Prefix)
}
