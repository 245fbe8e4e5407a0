package testutil

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/robpurser/sitecheck/test/testbrowser"
)

// InitTestBrowserManager performs the standard initialization of a *testbrowser.Manager. It requires a *testing.M to
// ensure it is only called by TestMain. If something fails it calls os.Exit(1).
//
// MAX_CONCURRENT_BROWSER_TESTS sets how many browser sessions may be open at once. It defaults to 1.
func InitTestBrowserManager(*testing.M) *testbrowser.Manager {
	maxConcurrent := 1
	if s := os.Getenv("MAX_CONCURRENT_BROWSER_TESTS"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 1 {
			fmt.Println("MAX_CONCURRENT_BROWSER_TESTS must be an integer greater than 0")
			os.Exit(1)
		}
		maxConcurrent = int(n)
	}

	manager, err := testbrowser.NewManager(testbrowser.ManagerConfig{MaxConcurrentSessions: maxConcurrent})
	if err != nil {
		fmt.Println("failed to init testbrowser.Manager:", err)
		os.Exit(1)
	}

	return manager
}
