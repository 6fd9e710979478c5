package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClient_SearchAuthors(t *testing.T) {
	Convey("Given a fake OpenLibrary server", t, func() {
		var gotQuery, gotRawQuery, gotAgent, gotPath string
		status := http.StatusOK
		body := `{"numFound":1,"docs":[{"key":"OL272947A","name":"Douglas Adams"}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query().Get("q")
			gotRawQuery = r.URL.RawQuery
			gotAgent = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		client := NewClient(WithBaseURL(srv.URL+"/"), WithUserAgent("shelf-test"), WithRateLimit(1000))

		Convey("When the upstream answers 200 with JSON", func() {
			raw, err := client.SearchAuthors(context.Background(), "Douglas Adams")

			Convey("Then the body should be returned verbatim", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, body)
				So(gotPath, ShouldEqual, "/search/authors.json")
				So(gotQuery, ShouldEqual, "Douglas Adams")
				So(gotAgent, ShouldEqual, "shelf-test")
			})
		})

		Convey("When the name contains reserved characters", func() {
			_, err := client.SearchAuthors(context.Background(), "Tolkien&limit=1#x")

			Convey("Then they should be escaped into the q parameter", func() {
				So(err, ShouldBeNil)
				So(gotQuery, ShouldEqual, "Tolkien&limit=1#x")
				So(gotRawQuery, ShouldEqual, "q=Tolkien%26limit%3D1%23x")
			})
		})

		Convey("When the upstream answers 400", func() {
			status = http.StatusBadRequest
			_, err := client.SearchAuthors(context.Background(), "x")

			Convey("Then a StatusError with the code should be returned", func() {
				var se *StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Code, ShouldEqual, http.StatusBadRequest)
				So(se.Error(), ShouldContainSubstring, "400")
			})
		})

		Convey("When the upstream answers 200 with a non-JSON body", func() {
			body = "<html>maintenance</html>"
			_, err := client.SearchAuthors(context.Background(), "x")

			Convey("Then ErrDecode should be returned", func() {
				So(errors.Is(err, ErrDecode), ShouldBeTrue)
			})
		})
	})
}

func TestClient_Timeout(t *testing.T) {
	Convey("Given a slow upstream", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := NewClient(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))

		Convey("When searching", func() {
			_, err := client.SearchAuthors(context.Background(), "slow")

			Convey("Then a timeout request error should be returned", func() {
				So(errors.Is(err, ErrRequest), ShouldBeTrue)
				So(IsTimeout(err), ShouldBeTrue)
			})
		})
	})
}

func TestClient_RateLimitBoundedByTimeout(t *testing.T) {
	Convey("Given a fast upstream behind a slow limiter", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"docs":[]}`))
		}))
		defer srv.Close()

		client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0.5), WithTimeout(100*time.Millisecond))

		Convey("When searching twice back to back", func() {
			_, first := client.SearchAuthors(context.Background(), "adams")
			start := time.Now()
			_, second := client.SearchAuthors(context.Background(), "adams")
			elapsed := time.Since(start)

			Convey("Then the second call should fail within the timeout instead of queueing", func() {
				So(first, ShouldBeNil)
				So(errors.Is(second, ErrRequest), ShouldBeTrue)
				So(errors.Is(second, ErrRateLimited), ShouldBeTrue)
				So(IsTimeout(second), ShouldBeTrue)
				So(elapsed, ShouldBeLessThan, 200*time.Millisecond)
			})
		})
	})
}

func TestClient_OversizedBody(t *testing.T) {
	Convey("Given an upstream returning more than the body limit", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"pad":"` + strings.Repeat("x", maxResponseBytes) + `"}`))
		}))
		defer srv.Close()

		client := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))

		Convey("When searching", func() {
			_, err := client.SearchAuthors(context.Background(), "verbose")

			Convey("Then a too-large error should be returned rather than a decode error", func() {
				So(errors.Is(err, ErrResponseTooLarge), ShouldBeTrue)
				So(errors.Is(err, ErrDecode), ShouldBeFalse)
			})
		})
	})
}

func TestClient_Unreachable(t *testing.T) {
	Convey("Given an upstream that is not listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		baseURL := srv.URL
		srv.Close()

		client := NewClient(WithBaseURL(baseURL))

		Convey("When searching", func() {
			_, err := client.SearchAuthors(context.Background(), "nobody")

			Convey("Then a non-timeout request error should be returned", func() {
				So(errors.Is(err, ErrRequest), ShouldBeTrue)
				So(IsTimeout(err), ShouldBeFalse)
			})
		})
	})
}

func TestClient_CancelledContext(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		client := NewClient(WithBaseURL("http://127.0.0.1:1"))

		Convey("When searching", func() {
			_, err := client.SearchAuthors(ctx, "x")

			Convey("Then the limiter wait should fail fast", func() {
				So(errors.Is(err, ErrRequest), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestClient_AuthorSearchURL(t *testing.T) {
	Convey("Given a client with the default base URL", t, func() {
		client := NewClient()

		Convey("Then the URL should be escaped", func() {
			So(client.AuthorSearchURL("J. R. R. Tolkien"), ShouldEqual, "https://openlibrary.org/search/authors.json?q=J.+R.+R.+Tolkien")
		})
	})
}
