package smoke

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fetch requests url and returns the response body. Transport failures and non-2xx responses are returned as
// *NavigationError. The caller must close the body.
func Fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &NavigationError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	return resp.Body, nil
}

// CheckDocument verifies the served HTML in r without a browser. Text is taken from the markup rather than rendered,
// so content produced by scripts is not seen.
func CheckDocument(r io.Reader, exp Expectations) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	err = checkTitle(title, exp.Title)
	if err != nil {
		return err
	}

	for _, section := range exp.Sections {
		selection := doc.Find(sectionSelector(section.ID))
		if selection.Length() == 0 {
			return &ElementNotFoundError{ID: section.ID}
		}

		err = checkSection(section, selection.First().Text())
		if err != nil {
			return err
		}
	}

	return nil
}
