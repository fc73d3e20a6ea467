/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package dnsguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const REQUEST_TIMEOUT = 5 * time.Second

var (
	ErrPrivateAddress = errors.New("host resolves to a non-public address")
	ErrNoAddress      = errors.New("host has no addresses")
)

// Guard resolves a host through a fixed resolver and refuses hosts that point
// at loopback, private, link-local or otherwise non-routable addresses.
// A Guard with an empty resolver address checks only literal IPs.
type Guard struct {
	resolver string
	client   *dns.Client
}

func New(resolver string) *Guard {
	return &Guard{
		resolver: resolver,
		client:   &dns.Client{Timeout: REQUEST_TIMEOUT},
	}
}

func (g *Guard) Enabled() bool {
	return g != nil && g.resolver != ""
}

func IsPublic(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

func (g *Guard) Check(ctx context.Context, host string) error {
	if ip := net.ParseIP(host); ip != nil {
		if !IsPublic(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
		}
		return nil
	}
	if !g.Enabled() {
		return nil
	}

	var addrs []net.IP
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ips, err := g.lookup(ctx, host, qtype)
		if err != nil {
			return err
		}
		addrs = append(addrs, ips...)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoAddress, host)
	}
	for _, ip := range addrs {
		if !IsPublic(ip) {
			return fmt.Errorf("%w: %s -> %s", ErrPrivateAddress, host, ip)
		}
	}
	return nil
}

func (g *Guard) lookup(ctx context.Context, host string, qtype uint16) ([]net.IP, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true
	m.SetEdns0(4096, false)

	r, _, err := g.client.ExchangeContext(ctx, m, g.resolver)
	if err != nil {
		return nil, err
	}
	switch r.Rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, errors.New(dns.RcodeToString[r.Rcode])
	}

	var ips []net.IP
	for _, answer := range r.Answer {
		switch rr := answer.(type) {
		case *dns.A:
			ips = append(ips, rr.A)
		case *dns.AAAA:
			ips = append(ips, rr.AAAA)
		}
	}
	return ips, nil
}
