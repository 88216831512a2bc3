package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// ErrMalformed is returned when a candidate identifier does not match its class pattern
var ErrMalformed = errors.New("malformed identifier")

// Render formats ordinal within scope, e.g. Render(PurchaseOrder, "WH0001-PO-2601", 4)
// yields "WH0001-PO-2601-0004". Ordinals above the ceiling fail with
// *shared.SequenceExhaustedError.
func Render(c Class, scope string, ordinal int) (string, error) {
	if ordinal > c.Ceiling {
		return "", &shared.SequenceExhaustedError{Class: c.Name}
	}
	if ordinal < c.MinOrdinal {
		return "", fmt.Errorf("%w: ordinal %d below minimum %d for %s", ErrMalformed, ordinal, c.MinOrdinal, c.Name)
	}
	if !c.ValidScope(scope) {
		return "", fmt.Errorf("%w: scope %q invalid for %s", ErrMalformed, scope, c.Name)
	}
	return fmt.Sprintf("%s%s%0*d", scope, c.Separator, c.Width, ordinal), nil
}

// Parse splits a rendered identifier back into scope and ordinal. It only
// checks shape; use Validate to also enforce the ceiling.
func Parse(c Class, candidate string) (scope string, ordinal int, err error) {
	m := c.re.FindStringSubmatch(candidate)
	if m == nil {
		return "", 0, ErrMalformed
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, ErrMalformed
	}
	return m[1], n, nil
}

// Validate checks a caller-supplied identifier against its class pattern and
// ordinal bounds. Returns ErrMalformed or *shared.SequenceExhaustedError.
func Validate(c Class, candidate string) error {
	_, n, err := Parse(c, candidate)
	if err != nil {
		return err
	}
	if n < c.MinOrdinal {
		return ErrMalformed
	}
	if n > c.Ceiling {
		return &shared.SequenceExhaustedError{Class: c.Name}
	}
	return nil
}

// Valid is the boolean form of Validate
func Valid(c Class, candidate string) bool {
	return Validate(c, candidate) == nil
}

// ValidationIssues converts a Validate failure into field issues at path
func ValidationIssues(c Class, path, candidate string) shared.Issues {
	var issues shared.Issues
	switch err := Validate(c, candidate); {
	case err == nil:
	case errors.Is(err, ErrMalformed):
		issues.Add(path, c.FormatHint)
	default:
		issues.Add(path, err.Error())
	}
	return issues
}

// Normalize trims and upper-cases a manually entered identifier
func Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

// Next returns the ordinal following the highest one already used in scope.
// existing holds identifiers of live records sharing the scope prefix; entries
// that do not parse or belong to a different scope are ignored.
func Next(c Class, scope string, existing []string) (int, error) {
	highest := 0
	for _, id := range existing {
		s, n, err := Parse(c, id)
		if err != nil || s != scope {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	next := highest + 1
	if next > c.Ceiling {
		return 0, &shared.SequenceExhaustedError{Class: c.Name}
	}
	return next, nil
}

// Mint combines Next and Render
func Mint(c Class, scope string, existing []string) (string, error) {
	n, err := Next(c, scope, existing)
	if err != nil {
		return "", err
	}
	return Render(c, scope, n)
}
