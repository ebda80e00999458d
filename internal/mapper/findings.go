package mapper

import "fmt"

// Severity classifies a validation finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is a single field-level validation problem discovered while
// mapping a document. Findings accumulate; mapping never stops at the
// first problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s]: %s", f.Severity, f.Field, f.Message)
}

// Findings is an ordered list of validation findings.
type Findings []Finding

// HasErrors reports whether any finding has error severity. Error-severity
// findings block registry calls but never stop the mapping pass itself.
func (fs Findings) HasErrors() bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity findings.
func (fs Findings) Errors() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// ForField returns the findings attached to the given field name.
func (fs Findings) ForField(field string) Findings {
	var out Findings
	for _, f := range fs {
		if f.Field == field {
			out = append(out, f)
		}
	}
	return out
}

func (fs *Findings) errorf(field, format string, args ...interface{}) {
	*fs = append(*fs, Finding{Severity: SeverityError, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fs *Findings) warnf(field, format string, args ...interface{}) {
	*fs = append(*fs, Finding{Severity: SeverityWarning, Field: field, Message: fmt.Sprintf(format, args...)})
}
