package shared

// Issue is a single field-level rule violation
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String renders the issue as "path: message"
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Issues is an ordered list of violations
type Issues []Issue

// Add appends a violation
func (is *Issues) Add(path, message string) {
	*is = append(*is, Issue{Path: path, Message: message})
}

// Merge appends all violations of other
func (is *Issues) Merge(other Issues) {
	*is = append(*is, other...)
}

// HasPath reports whether any violation targets path
func (is Issues) HasPath(path string) bool {
	for _, i := range is {
		if i.Path == path {
			return true
		}
	}
	return false
}

// Err returns a *ValidationError, or nil when empty
func (is Issues) Err() error {
	return NewValidationError(is)
}

// Rule is one named predicate in an ordered validation table.
// When is optional; a rule whose When returns false is skipped.
// Valid returns true when the subject satisfies the rule.
type Rule[T any] struct {
	Name    string
	Path    string
	Message string
	When    func(T) bool
	Valid   func(T) bool
}

// Evaluate runs every rule in order against subject and collects all violations
func Evaluate[T any](subject T, rules []Rule[T]) Issues {
	var issues Issues
	for _, r := range rules {
		if r.When != nil && !r.When(subject) {
			continue
		}
		if !r.Valid(subject) {
			issues.Add(r.Path, r.Message)
		}
	}
	return issues
}
