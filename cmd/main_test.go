package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/urfave/cli/v2"

	"github.com/okian/shelf/pkg/metrics"
)

func TestFlagOverrides(t *testing.T) {
	convey.Convey("Given the shelf CLI flags", t, func() {
		var got map[string]interface{}
		app := newApp()
		app.Action = func(c *cli.Context) error {
			got = flagOverrides(c)
			return nil
		}

		convey.Convey("When no flags are set", func() {
			convey.So(app.Run([]string{"shelf"}), convey.ShouldBeNil)

			convey.Convey("Then no overrides should be produced", func() {
				convey.So(got, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When host, port and debug are set", func() {
			convey.So(app.Run([]string{"shelf", "--host", "127.0.0.1", "--port", "8081", "--debug"}), convey.ShouldBeNil)

			convey.Convey("Then each should become an override", func() {
				convey.So(got, convey.ShouldResemble, map[string]interface{}{
					"host":  "127.0.0.1",
					"port":  8081,
					"debug": true,
				})
			})
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a free local port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		port := l.Addr().(*net.TCPAddr).Port
		_ = l.Close()
		_ = os.Unsetenv("SHELF_CONFIG")

		convey.Convey("When the server runs until its context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- newApp().RunContext(ctx, []string{"shelf", "--host", "127.0.0.1", "--port", strconv.Itoa(port)})
			}()

			base := "http://127.0.0.1:" + strconv.Itoa(port)
			var status int
			for i := 0; i < 50; i++ {
				resp, err := http.Get(base + "/health")
				if err == nil {
					status = resp.StatusCode
					_ = resp.Body.Close()
					break
				}
				time.Sleep(50 * time.Millisecond)
			}
			cancel()

			convey.Convey("Then it should serve and shut down cleanly", func() {
				convey.So(status, convey.ShouldEqual, http.StatusOK)
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("server did not shut down")
				}
			})
		})

		convey.Convey("When the port is out of range", func() {
			err := newApp().Run([]string{"shelf", "--port", "70000"})

			convey.Convey("Then config validation should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "port 70000 out of range")
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When it runs until the context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then it should return without panicking", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
			})
		})
	})
}
