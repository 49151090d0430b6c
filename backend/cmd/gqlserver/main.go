// Command gqlserver is the GraphQL server deployed behind AWS Lambda Web
// Adapter. The database pool is established and verified during startup,
// before the HTTP server starts listening, so LWA's readiness check cannot
// pass while the connection is still settling.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/northslopehq/nsapp/backend/internal/dbconn"
	"github.com/northslopehq/nsapp/backend/internal/gql"
	"github.com/northslopehq/nsapp/backend/internal/tracelog"
	"github.com/northslopehq/nsapp/backend/internal/tracing"
)

// Env holds the runtime configuration injected by the CDK constructs.
type Env struct {
	Port               int           `env:"AWS_LWA_PORT,required"`
	ReadinessCheckPath string        `env:"AWS_LWA_READINESS_CHECK_PATH,notEmpty"`
	ServiceName        string        `env:"NS_SERVICE_NAME,notEmpty"`
	LogLevel           zapcore.Level `env:"NS_LOG_LEVEL" envDefault:"info"`
	DBSecretName       string        `env:"NS_DB_SECRET_NAME,notEmpty"`
	DBName             string        `env:"NS_DB_NAME" envDefault:"app"`
}

func main() {
	fx.New(
		fx.Provide(
			parseEnv,
			newLogger,
			newAWSConfig,
			newSecretsClient,
			newPool,
			gql.NewResolver,
			gql.NewSchema,
			newMux,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(registerTracing, serve),
	).Run()
}

func parseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "parse environment")
	}
	return e, nil
}

func newLogger(e Env) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(e.LogLevel)
	logger, err := cfg.Build(zap.Fields(zap.String("service", e.ServiceName)))
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}

func newAWSConfig() (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "load AWS config")
	}
	return cfg, nil
}

func newSecretsClient(cfg aws.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(cfg)
}

// newPool fetches the database credentials and opens the connection pool.
// The OnStart hook pings the database; fx runs it before the server's hook,
// so the pool is verified before the first request can arrive.
func newPool(lc fx.Lifecycle, e Env, logger *zap.Logger, client *secretsmanager.Client) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := dbconn.FetchCredentials(ctx, client, e.DBSecretName)
	if err != nil {
		return nil, err
	}

	pool, err := dbconn.NewPool(ctx, creds, e.DBName)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return errors.Wrap(err, "ping database")
			}
			logger.Info("database connection established",
				zap.String("host", creds.Host), zap.String("dbname", e.DBName))
			return nil
		},
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newMux(e Env, schema *graphql.Schema) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(e.ReadinessCheckPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("POST /graphql", &relay.Handler{Schema: schema})
	return mux
}

func registerTracing(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: tracing.Init,
		OnStop:  tracing.Shutdown,
	})
}

func serve(lc fx.Lifecycle, e Env, logger *zap.Logger, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", e.Port),
		Handler:           otelhttp.NewHandler(requestLogger(logger, mux), e.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", srv.Addr)
			}
			logger.Info("listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// requestLogger logs one line per request with trace correlation.
func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		tracelog.With(r.Context(), logger).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
