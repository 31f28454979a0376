package hosts

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// maxCIDRAddrs caps how many addresses one range may expand to.
const maxCIDRAddrs = 1 << 16

// ExpandCIDR expands a CIDR range (or a single IP) into hosts. With a
// comma-separated port list every address is paired with every port.
// Network and broadcast addresses are skipped for IPv4 ranges wider than /31.
func ExpandCIDR(cidr string, portsStr string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		addr, aerr := netip.ParseAddr(cidr)
		if aerr != nil {
			return nil, fmt.Errorf("invalid CIDR or IP: %q", cidr)
		}
		prefix = netip.PrefixFrom(addr, addr.BitLen())
	}
	prefix = prefix.Masked()

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits > 16 {
		return nil, fmt.Errorf("range %s exceeds %d addresses", prefix, maxCIDRAddrs)
	}

	ports, err := parsePorts(portsStr)
	if err != nil {
		return nil, err
	}

	skipEdges := prefix.Addr().Is4() && hostBits > 1
	var out []string
	for addr := prefix.Addr(); addr.IsValid() && prefix.Contains(addr); addr = addr.Next() {
		if skipEdges && (addr == prefix.Addr() || !prefix.Contains(addr.Next())) {
			continue
		}
		if len(ports) == 0 {
			if addr.Is6() {
				out = append(out, "["+addr.String()+"]")
			} else {
				out = append(out, addr.String())
			}
			continue
		}
		for _, port := range ports {
			out = append(out, netip.AddrPortFrom(addr, port).String())
		}
	}
	return out, nil
}

func parsePorts(s string) ([]uint16, error) {
	var ports []uint16
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		ports = append(ports, uint16(n))
	}
	return ports, nil
}
