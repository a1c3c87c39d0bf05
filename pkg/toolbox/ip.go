package toolbox

import (
	"errors"
	"fmt"
	"net"

	"github.com/lab5e/gotoolbox/netutils"
)

// FindPublicIPv4 returns the first public IPv4 address of the host. Multicast
// capable interfaces are preferred since gossip and zeroconf need them.
func FindPublicIPv4() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifi := range ifaces {
		if (ifi.Flags & net.FlagUp) == 0 {
			continue
		}
		if (ifi.Flags & net.FlagMulticast) == 0 {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			if a, ok := addr.(*net.IPNet); ok {
				if ipv4 := a.IP.To4(); ipv4 != nil && !ipv4.IsLoopback() {
					return ipv4, nil
				}
			}
		}
	}
	return nil, errors.New("no public ipv4 address found")
}

// RandomPublicEndpoint returns host:port with the host's public address and a
// free TCP port. Falls back to localhost when the host has no public address.
func RandomPublicEndpoint() string {
	host := "localhost"
	if ip, err := FindPublicIPv4(); err == nil {
		host = ip.String()
	}
	port, err := netutils.FreeTCPPort()
	if err != nil {
		port = 0
	}
	return fmt.Sprintf("%s:%d", host, port)
}
