package share

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// ServiceType is the mDNS service hubs advertise.
const ServiceType = "_sketchboard._tcp"

// Advertise announces a hub listening on port. Shut the returned server down on exit.
func Advertise(port int, log *zap.Logger) (*mdns.Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"SketchBoard"})
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	log.Info("advertising board", zap.String("service", ServiceType), zap.String("instance", host), zap.Int("port", port))
	return server, nil
}

// Browse looks for hubs for up to timeout and calls found with the share link of
// each one, once per address.
func Browse(timeout time.Duration, found func(link string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		seen := map[string]bool{}
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			link := FormatLink(e.AddrV4.String(), e.Port)
			if seen[link] {
				continue
			}
			seen[link] = true
			found(link)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	wg.Wait()
	return err
}
