package share

import "net"

// OutgoingIP returns the address other machines on the LAN can reach this host on.
// No packet is sent; dialing UDP only selects a route. Without a route it falls back
// to the interface addresses, then to loopback.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	var addrs []net.Addr
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if a, err := iface.Addrs(); err == nil {
			addrs = append(addrs, a...)
		}
	}
	if ip, ok := pickLANAddr(addrs); ok {
		return ip.String()
	}
	return "127.0.0.1"
}

// pickLANAddr picks the IPv4 address peers are most likely to reach: a private
// address if there is one, otherwise any global unicast address. Loopback and
// link-local addresses never qualify.
func pickLANAddr(addrs []net.Addr) (net.IP, bool) {
	var fallback net.IP
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To4()
		if ip == nil || !ip.IsGlobalUnicast() {
			continue
		}
		if ip.IsPrivate() {
			return ip, true
		}
		if fallback == nil {
			fallback = ip
		}
	}
	return fallback, fallback != nil
}
