// Package health reports database reachability over HTTP and the standard
// gRPC health protocol.
package health

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

type Checker struct {
	db     *gorm.DB
	server *health.Server
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db, server: health.NewServer()}
}

// Ping checks that the database answers.
func (c *Checker) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Refresh pings the database and updates the gRPC serving status.
func (c *Checker) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := c.Ping(ctx); err != nil {
		log.Printf("Warning: database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", status)
	return status
}

// Watch refreshes the status every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		c.Refresh(ctx)
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Server returns the gRPC health implementation.
func (c *Checker) Server() healthpb.HealthServer {
	return c.server
}

// ServeGRPC blocks serving grpc.health.v1.Health on port.
func (c *Checker) ServeGRPC(port string) (*grpc.Server, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", port, err)
	}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, c.server)

	go func() {
		log.Printf("gRPC health server running on :%s", port)
		if err := grpcServer.Serve(listener); err != nil {
			log.Printf("gRPC health server stopped: %v", err)
		}
	}()
	return grpcServer, nil
}
