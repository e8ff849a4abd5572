package main

import (
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/kacperborowieckb/schema-wizard/shared/completion"
	"github.com/kacperborowieckb/schema-wizard/shared/messaging"
	"github.com/kacperborowieckb/schema-wizard/shared/pipeline"
	"github.com/kacperborowieckb/schema-wizard/shared/secret"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
	"github.com/kacperborowieckb/schema-wizard/utils/config"
	"github.com/kacperborowieckb/schema-wizard/utils/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pipelineCfg := pipeline.Config{DefaultModel: cfg.LLM.DefaultModel}

	// --- RabbitMQ Setup (optional) ---
	var mq *messaging.RabbitMQ
	if cfg.RabbitMQ.URL != "" {
		mq, err = messaging.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ: %v", err)
		}
		defer mq.Close()

		if err := mq.SetupAppTopology(); err != nil {
			log.Fatalf("Failed to set up RabbitMQ topology: %v", err)
		}

		pipelineCfg.Events = messaging.NewStagePublisher(mq)
		log.Println("Publishing stage events to RabbitMQ")
	} else {
		log.Println("AMQP_URL not set, stage events disabled")
	}

	p, err := pipeline.New(session.NewStore(), newGateway(cfg), pipelineCfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	// --- gRPC Server Setup ---
	lis, err := net.Listen("tcp", ":"+cfg.Designer.Port)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()

	pb.RegisterWizardServer(grpcServer, NewDesignerServer(p))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	log.Printf("gRPC designer service listening on %s", lis.Addr())

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	sig := shutdown.Wait()
	log.Printf("Shutting down gRPC server... Received signal: %v", sig)

	healthServer.Shutdown()
	shutdown.StopGRPC(grpcServer, cfg.LLMTimeout()+5*time.Second)
}

// newGateway routes gemini-* models to Gemini. Other model ids go to the
// OpenAI-compatible endpoint when one is configured.
func newGateway(cfg *config.Config) completion.Gateway {
	gemini := completion.NewGemini(secret.NewCredential(cfg.LLM.GeminiAPIKey), cfg.LLMTimeout())

	router := completion.NewRouter().Handle("gemini", gemini)

	if cfg.LLM.OpenAIBaseURL != "" {
		log.Printf("Routing non-Gemini models to %s", cfg.LLM.OpenAIBaseURL)
		router.Fallback(completion.NewOpenAICompatible(cfg.LLM.OpenAIBaseURL, secret.NewCredential(cfg.LLM.OpenAIAPIKey), cfg.LLMTimeout()))
	} else {
		router.Fallback(gemini)
	}

	return router
}
