package router

import (
	"context"
	"net/http"
	"time"

	staffjwt "clinic-records/internal/adapters/auth/jwt"
	mem "clinic-records/internal/adapters/storage/memory"
	pg "clinic-records/internal/adapters/storage/postgres"
	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
	"clinic-records/internal/domain/lookup"
	"clinic-records/internal/domain/records"
	"clinic-records/internal/middleware"
	"clinic-records/internal/platform/metrics"
	"clinic-records/internal/ports/auth"

	_ "clinic-records/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const defaultBaseURL = "http://localhost:8080"

type Options struct {
	// AuthVerifier puede ser nil (modo dev). Si es nil y Tokens viene, se usa Tokens.
	AuthVerifier auth.AuthVerifier

	// Tokens + Authenticator habilitan /staff/login y /staff/logout.
	Tokens        *staffjwt.Tokens
	Authenticator *staffjwt.Authenticator

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *pg.DB

	// BaseURL de los QR; sale de config, nunca del request.
	BaseURL string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	verifier := opts.AuthVerifier
	if verifier == nil && opts.Tokens != nil {
		verifier = opts.Tokens
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log, m))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(verifier, log))

	r.Get("/health", healthHandler(opts.DB))
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		animalRepo  animals.Repository
		historyRepo history.Repository
	)

	if opts.DB != nil {
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		historyRepo = pg.NewHistoryRepo(opts.DB)
	} else {
		st := mem.NewStore()
		animalRepo = mem.NewAnimalRepo(st)
		historyRepo = mem.NewHistoryRepo(st)
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo)
	historySvc := history.NewService(historyRepo)
	binder := lookup.NewBinder(animalsSvc)

	recordsSvc := records.NewService(animalsSvc, historySvc, binder, records.Options{
		BaseURL: baseURL,
		Metrics: m,
		Logger:  log,
	})

	// Rutas por módulo
	records.RegisterRoutes(r, recordsSvc)
	if opts.Tokens != nil {
		registerSessionRoutes(r, opts.Tokens, opts.Authenticator, log)
	}

	return r
}

func healthHandler(db *pg.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
