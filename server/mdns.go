package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_maskedit._tcp"

// Advertise 在局域网广播编辑服务
func Advertise(port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"maskedit"}
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}
