package smoke

import "fmt"

// NavigationError is returned when the page could not be loaded. No content checks are attempted after it.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ElementNotFoundError is returned when no element has the expected id.
type ElementNotFoundError struct {
	ID string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found", e.ID)
}

// AssertionError is returned when the title or a section does not contain the expected text. Check names what was
// being checked, e.g. "title" or "section gamesection".
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected text to contain %q, got %q", e.Check, e.Expected, e.Actual)
}
