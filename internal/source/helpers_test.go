package source

import "github.com/linuxmatters/jivescii/internal/config"

// testConfigStore returns a store with default settings for source tests.
func testConfigStore() *config.Store {
	return config.NewStore(config.Default())
}
