package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
	"github.com/kacperborowieckb/schema-wizard/utils/config"
	"github.com/kacperborowieckb/schema-wizard/utils/health"
	"github.com/kacperborowieckb/schema-wizard/utils/shutdown"
)

type apiServer struct {
	designer pb.WizardClient
	validate *validator.Validate
	timeout  time.Duration
}

func newAPIServer(designer pb.WizardClient, timeout time.Duration) *apiServer {
	return &apiServer{
		designer: designer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		timeout:  timeout,
	}
}

func (s *apiServer) routes(checks ...health.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", health.NewHandler("api", checks...))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout + 5*time.Second))

			r.Post("/generate-questions", s.handleGenerateQuestions)
			r.Post("/generate-detailed-prompt", s.handleGeneratePlan)
			r.Post("/generate-table-schema", s.handleGenerateTableSchema)
			r.Post("/generate-database-code", s.handleGenerateCode)

			r.Get("/session/{id}", s.handleGetSession)
			r.Delete("/session/{id}", s.handleDeleteSession)
			r.Get("/sessions", s.handleListSessions)

			r.Get("/supported-languages", s.handleSupportedLanguages)
			r.Get("/models", s.handleListModels)
		})

		r.Post("/generate-all-schemas", s.handleGenerateAllSchemas)
	})

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- gRPC Client Setup ---
	log.Printf("Connecting to designer service at %s (insecure: %v)", cfg.API.DesignerAddr, cfg.API.DesignerInsecure)

	var opts []grpc.DialOption
	if cfg.API.DesignerInsecure {
		// Use insecure for local development (no TLS)
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		log.Println("Using system TLS credentials")
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(nil)))
	}

	conn, err := grpc.NewClient(cfg.API.DesignerAddr, opts...)
	if err != nil {
		log.Fatalf("Failed to connect to designer service: %v", err)
	}
	defer conn.Close()

	s := newAPIServer(pb.NewWizardClient(conn), cfg.RequestTimeout())
	// --- End gRPC Client Setup ---

	srv := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: s.routes(health.GRPCCheck("designer", conn, pb.ServiceName)),
	}

	go func() {
		log.Printf("api service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	shutdown.WaitForShutdown(srv, 5*time.Second)
}
