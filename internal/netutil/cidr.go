// Package netutil expands network ranges and target files into base URLs.
package netutil

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// MaxHosts caps how many addresses a single range may expand to.
const MaxHosts = 65536

// ExpandTargets turns a CIDR range (or single IP) and a comma-separated port
// list into base URLs. Port 443 and 8443 use https, everything else http;
// default ports are left out of the URL. Without ports, 80 is used.
func ExpandTargets(cidr, portsStr string) ([]string, error) {
	prefix, err := parsePrefix(cidr)
	if err != nil {
		return nil, err
	}
	ports, err := parsePorts(portsStr)
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		ports = []int{80}
	}

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits > 16 {
		return nil, fmt.Errorf("range %s has more than %d addresses", prefix, MaxHosts)
	}

	first := prefix.Masked().Addr()
	last := lastAddr(prefix)
	skipEdges := prefix.Addr().Is4() && hostBits > 1

	var urls []string
	for ip := first; prefix.Contains(ip); ip = ip.Next() {
		if skipEdges && (ip == first || ip == last) {
			continue // network and broadcast addresses
		}
		for _, port := range ports {
			urls = append(urls, baseURL(ip, port))
		}
		if ip == last {
			break
		}
	}
	return urls, nil
}

func parsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR or IP: %q", s)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func parsePorts(s string) ([]int, error) {
	var ports []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		ports = append(ports, n)
	}
	return ports, nil
}

func baseURL(ip netip.Addr, port int) string {
	scheme := "http"
	if port == 443 || port == 8443 {
		scheme = "https"
	}
	host := ip.String()
	if ip.Is6() {
		host = "[" + host + "]"
	}
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return scheme + "://" + host
	}
	return scheme + "://" + host + ":" + strconv.Itoa(port)
}

// lastAddr returns the highest address in p.
func lastAddr(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().AsSlice()
	bits := p.Bits()
	for i := range b {
		for bit := 7; bit >= 0; bit-- {
			if i*8+(7-bit) >= bits {
				b[i] |= 1 << bit
			}
		}
	}
	addr, _ := netip.AddrFromSlice(b)
	return addr
}
