package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/shelf/internal/adapters/openlibrary"
	"github.com/okian/shelf/pkg/metrics"
)

func TestUpstreamOutcome(t *testing.T) {
	Convey("Given author search errors of each kind", t, func() {
		cases := []struct {
			name string
			err  error
			want string
		}{
			{"no error", nil, metrics.UpstreamOK},
			{"upstream 400", &openlibrary.StatusError{Code: http.StatusBadRequest}, metrics.UpstreamBadRequest},
			{"upstream 503", &openlibrary.StatusError{Code: http.StatusServiceUnavailable}, metrics.UpstreamBadStatus},
			{"invalid JSON", fmt.Errorf("%w: invalid", openlibrary.ErrDecode), metrics.UpstreamBadPayload},
			{"oversized body", fmt.Errorf("%w: big", openlibrary.ErrResponseTooLarge), metrics.UpstreamBadPayload},
			{"client deadline", fmt.Errorf("%w: %w", openlibrary.ErrRequest, context.DeadlineExceeded), metrics.UpstreamTimeout},
			{"limiter deadline", fmt.Errorf("%w: %w", openlibrary.ErrRequest, openlibrary.ErrRateLimited), metrics.UpstreamTimeout},
			{"connection refused", fmt.Errorf("%w: %w", openlibrary.ErrRequest, errors.New("connection refused")), metrics.UpstreamUnreachable},
		}

		for _, tc := range cases {
			Convey("When the error is "+tc.name, func() {
				So(upstreamOutcome(tc.err), ShouldEqual, tc.want)
			})
		}
	})
}
