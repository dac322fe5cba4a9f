package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/application/aggregation"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/state"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var fixedNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

// envelope decodes dto.Response with a typed payload
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type stubAggregator struct {
	result *aggregation.Result
	err    error
	window int
}

func (a *stubAggregator) Aggregate(_ context.Context, _ []marketplace.StoreCredential, windowDays int) (*aggregation.Result, error) {
	a.window = windowDays
	return a.result, a.err
}

type stubLabelFetcher struct {
	doc      []byte
	err      error
	gotStore string
	gotIDs   []string
}

func (f *stubLabelFetcher) FetchLabels(_ context.Context, cred marketplace.StoreCredential, postingIDs []string) ([]byte, error) {
	f.gotStore = cred.StoreID
	f.gotIDs = postingIDs
	return f.doc, f.err
}

func singleItemOrder(store, posting, offer string, at time.Time) marketplace.Order {
	return marketplace.Order{
		PostingID:     posting,
		OrderID:       "O-" + posting,
		Status:        "awaiting_packaging",
		SourceStoreID: store,
		CreatedAt:     at,
		LineItems: []marketplace.LineItem{
			{Name: "Item " + offer, OfferID: offer, UnitPrice: "250", Currency: "RUB", Quantity: 1, SkuID: "sku-" + offer},
		},
	}
}

func newTestWorkspace(t *testing.T, creds ...marketplace.StoreCredential) *state.Workspace {
	t.Helper()
	ws := state.NewWorkspace(state.NewMemoryStore())
	if len(creds) > 0 {
		require.NoError(t, ws.SaveCredentials(context.Background(), creds))
	}
	return ws
}

func newTestOrders(ws *state.Workspace, agg *stubAggregator) *orders.Service {
	return orders.NewService(ws, agg, 15, orders.WithClock(func() time.Time { return fixedNow }))
}

// loadedOrders returns an orders service that already holds a snapshot
func loadedOrders(t *testing.T, ws *state.Workspace, result *aggregation.Result) *orders.Service {
	t.Helper()
	svc := newTestOrders(ws, &stubAggregator{result: result})
	_, err := svc.Refresh(context.Background(), 0)
	require.NoError(t, err)
	return svc
}

// serve runs one request through a bare engine with request IDs enabled
func serve(method, path string, handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Handle(method, path, handler)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode[json.RawMessage](t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	require.Equal(t, "req-test", env.Error.RequestID)
}
