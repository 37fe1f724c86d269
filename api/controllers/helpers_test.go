package controllers

import "github.com/angelmondragon/rental-pricing/pkg/config"

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}
