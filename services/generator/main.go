package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kacperborowieckb/schema-wizard/shared/messaging"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
	"github.com/kacperborowieckb/schema-wizard/utils/config"
	"github.com/kacperborowieckb/schema-wizard/utils/health"
	"github.com/kacperborowieckb/schema-wizard/utils/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.RabbitMQ.URL == "" {
		log.Fatalf("AMQP_URL is required for the generator service")
	}

	// --- gRPC Client Setup ---
	log.Printf("Connecting to designer service at %s", cfg.Generator.DesignerAddr)

	conn, err := grpc.NewClient(cfg.Generator.DesignerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect to designer service: %v", err)
	}
	defer conn.Close()

	// --- RabbitMQ Setup ---
	mq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ: %v", err)
	}
	defer mq.Close()

	if err := mq.SetupAppTopology(); err != nil {
		log.Fatalf("Failed to set up RabbitMQ topology: %v", err)
	}

	s := &generatorServer{
		designer:    pb.NewWizardClient(conn),
		autoSchemas: cfg.Generator.AutoGenerateSchemas,
		perTable:    cfg.LLMTimeout(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mq.ConsumeMessages(ctx, messaging.SchemaGenerationQueue, s.handlePlanReady); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}

	log.Printf("Consuming %s (auto schemas: %v)", messaging.SchemaGenerationQueue, s.autoSchemas)

	r := chi.NewRouter()

	r.Get("/health", health.NewHandler("generator",
		health.Check{Name: "rabbitmq", Probe: mq.Ping},
		health.GRPCCheck("designer", conn, pb.ServiceName),
	))

	srv := &http.Server{Addr: ":" + cfg.Generator.Port, Handler: r}

	go func() {
		log.Printf("generator service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	shutdown.WaitForShutdown(srv, 5*time.Second, cancel)
}
