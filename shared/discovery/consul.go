package discovery

import (
	"fmt"
	"net"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// ConsulRegistrar registers a gRPC service instance with the local Consul agent.
type ConsulRegistrar struct {
	client    *consulapi.Client
	logger    *zerolog.Logger
	serviceID string
}

// NewConsulRegistrar creates a registrar talking to the Consul agent at addr.
func NewConsulRegistrar(addr string, logger *zerolog.Logger) (*ConsulRegistrar, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistrar{client: client, logger: logger}, nil
}

// Register announces name at advertiseAddr (host:port) with a gRPC health check.
func (r *ConsulRegistrar) Register(name, advertiseAddr string) error {
	host, portStr, err := net.SplitHostPort(advertiseAddr)
	if err != nil {
		return fmt.Errorf("invalid advertise address %q: %w", advertiseAddr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid advertise port %q: %w", portStr, err)
	}

	serviceID := fmt.Sprintf("%s-%s-%d", name, host, port)
	registration := &consulapi.AgentServiceRegistration{
		ID:      serviceID,
		Name:    name,
		Address: host,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			GRPC:                           advertiseAddr,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service %s: %w", name, err)
	}

	r.serviceID = serviceID
	r.logger.Info().Str("service_id", serviceID).Msg("registered with consul")

	return nil
}

// Deregister removes the instance announced by Register.
func (r *ConsulRegistrar) Deregister() error {
	if r.serviceID == "" {
		return nil
	}

	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("failed to deregister service %s: %w", r.serviceID, err)
	}

	r.logger.Info().Str("service_id", r.serviceID).Msg("deregistered from consul")
	r.serviceID = ""

	return nil
}
