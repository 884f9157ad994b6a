package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emrgen/headline/internal/queue"
	"github.com/emrgen/headline/internal/service"
	"github.com/emrgen/headline/internal/store"
	"github.com/emrgen/headline/internal/tester"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
)

func TestHTTPHandler_Docs(t *testing.T) {
	a := newAPI(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/docs/openapi.json", nil)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title": "Headline API"`)
}

func TestHTTPHandler_CORS(t *testing.T) {
	a := newAPI(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/headlines/1", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.MethodPatch, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHTTPHandler_UnknownRoute(t *testing.T) {
	a := newAPI(t, "")

	rec, body := a.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["message"])
}

func TestRegisterHeadlineRoutes_MuxMarshaler(t *testing.T) {
	mux := runtime.NewServeMux(runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
		MarshalOptions: protojson.MarshalOptions{Indent: "  "},
	}))
	s := store.NewGormStore(tester.TestDB(t))
	require.NoError(t, RegisterHeadlineRoutes(mux, "", service.NewHeadlineService(s, queue.NewNop())))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "{\n  \"categories\": [")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/headlines/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "{\n  \"message\": ")
}

func TestGRPCServer_Health(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer()
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	res, err := healthpb.NewHealthClient(conn).Check(context.TODO(), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())

	_, err = healthpb.NewHealthClient(conn).Check(context.TODO(), &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUnaryInterceptor_RecoversPanic(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/headline.v1.HeadlineService/Panic"}
	_, err := unaryInterceptor()(context.TODO(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})

	assert.Equal(t, codes.Internal, status.Code(err))
}
