package server

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// RequestIDHeader carries the id correlating a call across client and
// server logs.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the id of the call being handled, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestIDInterceptor tags every unary call with a request id. Clients
// send a fresh uuid unless the caller set one; handlers adopt the client's
// id (or make one up), expose it through RequestID, echo it in the
// response headers and log the outcome of the call.
func NewRequestIDInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				if req.Header().Get(RequestIDHeader) == "" {
					req.Header().Set(RequestIDHeader, uuid.NewString())
				}
				return next(ctx, req)
			}

			id := req.Header().Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, id)

			start := time.Now()
			resp, err := next(ctx, req)
			log := commonlog.GetLogger(logName)
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, id)
				}
				log.Warningf("%s [%s] failed after %s: %s", req.Spec().Procedure, id, time.Since(start), err)
				return resp, err
			}
			resp.Header().Set(RequestIDHeader, id)
			log.Debugf("%s [%s] done in %s", req.Spec().Procedure, id, time.Since(start))
			return resp, nil
		}
	}
}
