package browser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/robpurser/sitecheck/smoke"
	"github.com/stretchr/testify/require"
)

const snakeGamePage = `<!doctype html>
<html>
<head><title>Quite Cool Snake Game by Rob Purser</title></head>
<body>
<div id="titlesection">This game is not really that cool.</div>
<div id="gamesection">The Destination</div>
<div id="backgroundsection">The Journey</div>
</body>
</html>`

func TestCheckBundledSite(t *testing.T) {
	t.Parallel()

	serverInstance := startServer(t)
	page := TestBrowserManager.Acquire(t).Page()

	err := smoke.Check(page.Page, smoke.SnakeGame.WithURL(serverInstance.URL+"/"))
	require.NoError(t, err)

	page.HasContent("h1", "Quite Cool Snake Game")
}

func TestCheckRepeatedRunsPass(t *testing.T) {
	t.Parallel()

	serverInstance := startPageServer(t, snakeGamePage)
	exp := smoke.SnakeGame.WithURL(serverInstance.URL + "/")

	for i := 0; i < 3; i++ {
		session := TestBrowserManager.Acquire(t)
		err := smoke.Check(session.Page().Page, exp)
		require.NoError(t, err)
		require.NoError(t, session.Close())
	}
}

func TestCheckTitleMismatch(t *testing.T) {
	t.Parallel()

	serverInstance := startPageServer(t, strings.Replace(snakeGamePage, "Quite Cool", "Somewhat Dull", 1))
	page := TestBrowserManager.Acquire(t).Page()

	err := smoke.Check(page.Page, smoke.SnakeGame.WithURL(serverInstance.URL+"/"))
	var assertionErr *smoke.AssertionError
	require.ErrorAs(t, err, &assertionErr)
	require.Equal(t, "title", assertionErr.Check)
	require.Equal(t, "Somewhat Dull Snake Game by Rob Purser", assertionErr.Actual)
	require.ErrorContains(t, err, "title")
}

func TestCheckSectionTextMismatch(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		testName string
		old      string
		new      string
		check    string
	}{
		{"title section", "not really that cool", "extremely cool", "section titlesection"},
		{"game section", "The Destination", "The End", "section gamesection"},
		{"background section", "The Journey", "The Story", "section backgroundsection"},
	} {
		t.Run(tc.testName, func(t *testing.T) {
			t.Parallel()

			serverInstance := startPageServer(t, strings.Replace(snakeGamePage, tc.old, tc.new, 1))
			page := TestBrowserManager.Acquire(t).Page()

			err := smoke.Check(page.Page, smoke.SnakeGame.WithURL(serverInstance.URL+"/"))
			var assertionErr *smoke.AssertionError
			require.ErrorAs(t, err, &assertionErr)
			require.Equal(t, tc.check, assertionErr.Check)
		})
	}
}

func TestCheckMissingSection(t *testing.T) {
	t.Parallel()

	for _, id := range []string{smoke.TitleSectionID, smoke.GameSectionID, smoke.BackgroundSectionID} {
		t.Run(id, func(t *testing.T) {
			t.Parallel()

			serverInstance := startPageServer(t, strings.Replace(snakeGamePage, `id="`+id+`"`, `id="renamed"`, 1))
			page := TestBrowserManager.Acquire(t).Page()

			err := smoke.Check(page.Page, smoke.SnakeGame.WithURL(serverInstance.URL+"/"))
			var notFoundErr *smoke.ElementNotFoundError
			require.ErrorAs(t, err, &notFoundErr)
			require.Equal(t, id, notFoundErr.ID)
		})
	}
}

func TestCheckServerUnreachable(t *testing.T) {
	t.Parallel()

	serverInstance := startPageServer(t, snakeGamePage)
	url := serverInstance.URL + "/"
	serverInstance.Close()

	page := TestBrowserManager.Acquire(t).Page()

	err := smoke.Check(page.Page, smoke.SnakeGame.WithURL(url))
	var navigationErr *smoke.NavigationError
	require.ErrorAs(t, err, &navigationErr)
	require.Equal(t, url, navigationErr.URL)

	var assertionErr *smoke.AssertionError
	require.False(t, errors.As(err, &assertionErr))
}
