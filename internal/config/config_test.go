package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/shelf/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Host, convey.ShouldEqual, "0.0.0.0")
			convey.So(cfg.Port, convey.ShouldEqual, 5000)
			convey.So(cfg.Addr(), convey.ShouldEqual, "0.0.0.0:5000")
			convey.So(cfg.Debug, convey.ShouldBeFalse)
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.OpenLibraryURL, convey.ShouldEqual, "https://openlibrary.org")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with an invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty host", func(c *config.Config) { c.Host = "" }},
			{"port zero", func(c *config.Config) { c.Port = 0 }},
			{"port too large", func(c *config.Config) { c.Port = 70000 }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"empty upstream", func(c *config.Config) { c.OpenLibraryURL = "" }},
			{"zero timeout", func(c *config.Config) { c.UpstreamTimeoutMS = 0 }},
			{"negative rps", func(c *config.Config) { c.UpstreamRPS = -1 }},
			{"zero body limit", func(c *config.Config) { c.MaxBodyBytes = 0 }},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)

				convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
					err := cfg.Validate()
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}

func TestConfig_AddrIPv6(t *testing.T) {
	convey.Convey("Given an IPv6 host", t, func() {
		cfg := config.New()
		cfg.Host = "::1"
		cfg.Port = 8080

		convey.Convey("Then Addr should bracket the host", func() {
			convey.So(cfg.Addr(), convey.ShouldEqual, "[::1]:8080")
		})
	})
}
