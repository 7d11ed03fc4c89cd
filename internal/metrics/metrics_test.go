package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type emptyMessage struct{}

func TestRecorders(t *testing.T) {
	seededBefore := testutil.ToFloat64(ordersSeeded)
	RecordSeeded(3)
	RecordSeeded(0)
	if got := testutil.ToFloat64(ordersSeeded) - seededBefore; got != 3 {
		t.Errorf("seeded: expected +3, got %v", got)
	}

	movedBefore := testutil.ToFloat64(reorders.WithLabelValues(OutcomeMoved))
	RecordReorder(OutcomeMoved)
	if got := testutil.ToFloat64(reorders.WithLabelValues(OutcomeMoved)) - movedBefore; got != 1 {
		t.Errorf("reorders{moved}: expected +1, got %v", got)
	}

	gapsBefore := testutil.ToFloat64(gapsClosed)
	RecordGapClosed()
	if got := testutil.ToFloat64(gapsClosed) - gapsBefore; got != 1 {
		t.Errorf("gaps closed: expected +1, got %v", got)
	}
}

func TestInterceptor(t *testing.T) {
	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&emptyMessage{}), nil
	}
	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}

	// Requests built outside a handler carry an empty procedure.
	okBefore := testutil.ToFloat64(rpcRequests.WithLabelValues("", "ok"))
	notFoundBefore := testutil.ToFloat64(rpcRequests.WithLabelValues("", "not_found"))

	Interceptor()(ok)(context.Background(), connect.NewRequest(&emptyMessage{}))
	Interceptor()(failing)(context.Background(), connect.NewRequest(&emptyMessage{}))

	if got := testutil.ToFloat64(rpcRequests.WithLabelValues("", "ok")) - okBefore; got != 1 {
		t.Errorf("ok requests: expected +1, got %v", got)
	}
	if got := testutil.ToFloat64(rpcRequests.WithLabelValues("", "not_found")) - notFoundBefore; got != 1 {
		t.Errorf("not_found requests: expected +1, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	RecordGapClosed()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "lifeareas_ordering_gaps_closed_total") {
		t.Errorf("expected ordering metrics in output:\n%s", rec.Body.String())
	}
}
