package health

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCCheck probes a remote service through the standard gRPC health protocol.
func GRPCCheck(name string, cc grpc.ClientConnInterface, service string) Check {
	client := healthpb.NewHealthClient(cc)

	return Check{
		Name: name,
		Probe: func(ctx context.Context) error {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return err
			}
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("%s is %s", service, resp.GetStatus())
			}
			return nil
		},
	}
}
