// Package smoke checks that a site serves a page whose title and sections contain expected text.
//
// A check is a fixed, non-branching sequence: navigate, read the title, then look up each section by element id. The
// first failure ends the check. Nothing is retried and no timeout is applied beyond what the browser driver does on
// its own.
package smoke

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

const (
	DefaultURL    = "http://localhost:8080/"
	ExpectedTitle = "Quite Cool Snake Game by Rob Purser"

	TitleSectionID      = "titlesection"
	GameSectionID       = "gamesection"
	BackgroundSectionID = "backgroundsection"
)

// Section is a page region addressed by element id whose text must contain Contains.
type Section struct {
	ID       string
	Contains string
}

// Expectations describes the page a check expects to find at URL.
type Expectations struct {
	URL      string
	Title    string
	Sections []Section
}

// SnakeGame is what the snake game site must serve.
var SnakeGame = Expectations{
	URL:   DefaultURL,
	Title: ExpectedTitle,
	Sections: []Section{
		{ID: TitleSectionID, Contains: "not really that cool"},
		{ID: GameSectionID, Contains: "The Destination"},
		{ID: BackgroundSectionID, Contains: "The Journey"},
	},
}

// WithURL returns a copy of exp that targets url.
func (exp Expectations) WithURL(url string) Expectations {
	exp.URL = url
	return exp
}

// Check navigates page to exp.URL and verifies the title and every section. page is not closed.
func Check(page *rod.Page, exp Expectations) error {
	err := page.Navigate(exp.URL)
	if err != nil {
		return &NavigationError{URL: exp.URL, Err: err}
	}

	err = page.WaitLoad()
	if err != nil {
		return &NavigationError{URL: exp.URL, Err: err}
	}

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("read page title: %w", err)
	}

	err = checkTitle(info.Title, exp.Title)
	if err != nil {
		return err
	}

	for _, section := range exp.Sections {
		// Has does not wait for the element to appear.
		found, element, err := page.Has(sectionSelector(section.ID))
		if err != nil {
			return fmt.Errorf("find element %q: %w", section.ID, err)
		}
		if !found {
			return &ElementNotFoundError{ID: section.ID}
		}

		text, err := element.Text()
		if err != nil {
			return fmt.Errorf("read text of element %q: %w", section.ID, err)
		}

		err = checkSection(section, text)
		if err != nil {
			return err
		}
	}

	return nil
}

func sectionSelector(id string) string {
	return fmt.Sprintf(`[id="%s"]`, id)
}

func checkTitle(actual, expected string) error {
	if !strings.Contains(actual, expected) {
		return &AssertionError{Check: "title", Expected: expected, Actual: actual}
	}
	return nil
}

func checkSection(section Section, text string) error {
	if !strings.Contains(text, section.Contains) {
		return &AssertionError{Check: "section " + section.ID, Expected: section.Contains, Actual: text}
	}
	return nil
}
