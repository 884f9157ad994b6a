package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/emrgen/headline/internal/config"
	"github.com/emrgen/headline/internal/jobs"
	"github.com/emrgen/headline/internal/queue"
	"github.com/emrgen/headline/internal/service"
	"github.com/emrgen/headline/internal/store"
	"github.com/gobuffalo/packr"
	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/encoding/protojson"
)

// HealthService is the name the gRPC health endpoint reports on.
const HealthService = "headline.v1.HeadlineService"

// Server represents the server
type Server struct {
	cfg *config.Config
}

// NewServer creates a new server
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.cfg); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// NewHTTPHandler builds the REST surface: headline routes under the
// configured prefix, API docs, metrics and CORS.
func NewHTTPHandler(prefix string, svc v1.HeadlineServiceServer) (http.Handler, error) {
	mux := runtime.NewServeMux(
		// encodes every response, see headlineHandler.outbound
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions: protojson.MarshalOptions{
				EmitUnpopulated: true,
			},
		}),
		runtime.WithRoutingErrorHandler(routingError),
	)

	if err := RegisterHeadlineRoutes(mux, prefix, svc); err != nil {
		return nil, err
	}

	apiMux := http.NewServeMux()
	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(openapiDocs)))
	apiMux.Handle("/metrics", promhttp.Handler())
	apiMux.Handle("/", mux)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // All origins are allowed
		AllowedMethods: []string{"GET", "POST", "DELETE", "PUT", "PATCH"},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	return RequestLogger(c.Handler(apiMux)), nil
}

// NewGRPCServer builds the gRPC server with health and reflection
// registered. The health status of HealthService starts as SERVING.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(unaryInterceptor()))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

func unaryInterceptor() grpc.UnaryServerInterceptor {
	return grpcmiddleware.ChainUnaryServer(
		grpcrecovery.UnaryServerInterceptor(grpcrecovery.WithRecoveryHandler(recoverPanic)),
		// log the request time
		UnaryGrpcRequestTimeInterceptor(),
	)
}

// Start starts the grpc and http servers and blocks until a stop signal.
func Start(cfg *config.Config) error {
	var err error

	config.SetupLogger(cfg)

	grpcPort := ":" + cfg.GrpcPort
	httpPort := ":" + cfg.HttpPort

	rdb, err := config.GetDb(cfg)
	if err != nil {
		return err
	}

	headlineStore := store.NewGormStore(rdb)
	if err = headlineStore.Migrate(); err != nil {
		return err
	}

	changes, err := queue.New(queue.Options{
		Driver:      cfg.QueueDriver,
		Topic:       cfg.QueueTopic,
		Compression: cfg.QueueCompression,
		RedisAddr:   cfg.RedisAddr,
		KafkaBroker: cfg.KafkaBrokers,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := changes.Close(); err != nil {
			logrus.Errorf("error closing queue: %v", err)
		}
	}()

	gl, err := net.Listen("tcp", grpcPort)
	if err != nil {
		return err
	}

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	grpcServer, healthServer := NewGRPCServer()

	headlineService := service.NewHeadlineService(headlineStore, changes)
	handler, err := NewHTTPHandler(cfg.HttpPrefix, headlineService)
	if err != nil {
		return err
	}

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: handler,
	}

	var cronJobs []jobs.CronJob
	if cfg.RefSweeperSchedule != "" {
		cronJobs = append(cronJobs, jobs.NewRefSweeper(cfg.RefSweeperSchedule, headlineStore))
	}
	executor := jobs.NewTaskExecutor(nil, cronJobs)
	if err = executor.Run(); err != nil {
		return fmt.Errorf("error starting jobs: %w", err)
	}

	// make sure to wait for the servers to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting rest server on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rest server: %v", err)
			}
		}
		logrus.Infof("rest server stopped")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting grpc server on: ", grpcPort)
		if err := grpcServer.Serve(gl); err != nil {
			logrus.Infof("grpc failed to start: %v", err)
		}
		logrus.Infof("grpc server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	healthServer.Shutdown()
	executor.Stop()
	grpcServer.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = restServer.Shutdown(ctx); err != nil {
		logrus.Errorf("error stopping rest server: %v", err)
	}

	wg.Wait()

	return nil
}
