//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"log"
	"net"

	"github.com/usbarmory/doorlock/board/usbarmory/mk2"

	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/adapters/gonet"
	"gvisor.dev/gvisor/pkg/tcpip/buffer"
	"gvisor.dev/gvisor/pkg/tcpip/link/channel"
	"gvisor.dev/gvisor/pkg/tcpip/network/arp"
	"gvisor.dev/gvisor/pkg/tcpip/network/ipv4"
	"gvisor.dev/gvisor/pkg/tcpip/stack"
	"gvisor.dev/gvisor/pkg/tcpip/transport/icmp"
	"gvisor.dev/gvisor/pkg/tcpip/transport/tcp"
	"gvisor.dev/gvisor/pkg/tcpip/transport/udp"
)

// mtu and ring depth mirror example/usb_ethernet.go's configureNetworkStack,
// adapted here to a real ENET2 PHY instead of a USB Ethernet gadget.
const mtu = 1500
const nicID tcpip.NICID = 1

// configureNetworkStack builds a gvisor userspace TCP/IP stack bound to the
// board's ENET2 MAC, grounded on example/usb_ethernet.go's
// configureNetworkStack: same stack.Options, NIC, and address/route setup,
// with the link layer driven by soc/nxp/enet's raw Rx/Tx frame buffers
// (pumped by pumpInbound/pumpOutbound below) instead of a USB CDC-ECM
// gadget endpoint.
func configureNetworkStack(addr tcpip.Address) *stack.Stack {
	s := stack.New(stack.Options{
		NetworkProtocols: []stack.NetworkProtocol{
			ipv4.NewProtocol(),
			arp.NewProtocol(),
		},
		TransportProtocols: []stack.TransportProtocol{
			tcp.NewProtocol(),
			udp.NewProtocol(),
			icmp.NewProtocol4(),
		},
	})

	linkAddr := tcpip.LinkAddress(net.HardwareAddr(mk2.ENET2.MAC))
	link := channel.New(256, mtu, linkAddr)

	if err := s.CreateNIC(nicID, link); err != nil {
		log.Fatalf("doorlockd: CreateNIC: %v", err)
	}

	if err := s.AddAddress(nicID, arp.ProtocolNumber, arp.ProtocolAddress); err != nil {
		log.Fatalf("doorlockd: AddAddress (arp): %v", err)
	}

	if err := s.AddAddress(nicID, ipv4.ProtocolNumber, addr); err != nil {
		log.Fatalf("doorlockd: AddAddress (ipv4): %v", err)
	}

	subnet, err := tcpip.NewSubnet("\x00\x00\x00\x00", "\x00\x00\x00\x00")
	if err != nil {
		log.Fatalf("doorlockd: NewSubnet: %v", err)
	}

	s.SetRouteTable([]tcpip.Route{{Destination: subnet, NIC: nicID}})

	go pumpInbound(link)
	go pumpOutbound(link)

	return s
}

// pumpInbound reads raw Ethernet frames off the PHY and injects them into
// the stack, the receive half of example/usb_ethernet.go's ECMRx.
func pumpInbound(link *channel.Endpoint) {
	for {
		frame := mk2.ENET2.Rx()
		if len(frame) < 14 {
			continue
		}

		hdr := buffer.NewViewFromBytes(frame[0:14])
		proto := tcpip.NetworkProtocolNumber(binary.BigEndian.Uint16(frame[12:14]))
		payload := buffer.NewViewFromBytes(frame[14:])

		link.InjectInbound(proto, tcpip.PacketBuffer{
			LinkHeader: hdr,
			Data:       payload.ToVectorisedView(),
		})
	}
}

// pumpOutbound drains the stack's outbound queue and writes each frame to
// the PHY, the transmit half of example/usb_ethernet.go's ECMTx.
func pumpOutbound(link *channel.Endpoint) {
	srcMAC := net.HardwareAddr(mk2.ENET2.MAC)

	for info := range link.C {
		hdr := info.Pkt.Header.View()
		payload := info.Pkt.Data.ToView()

		proto := make([]byte, 2)
		binary.BigEndian.PutUint16(proto, uint16(info.Proto))

		frame := make([]byte, 0, len(hdr)+len(payload)+len(proto)+2*len(srcMAC))
		frame = append(frame, info.Route.RemoteLinkAddress...)
		frame = append(frame, srcMAC...)
		frame = append(frame, proto...)
		frame = append(frame, hdr...)
		frame = append(frame, payload...)

		mk2.ENET2.Tx(frame)
	}
}

// listen binds a TCP listener on addr:port to the stack, grounded on
// example/web_server.go's startWebServer's gonet.NewListener call.
func listen(s *stack.Stack, addr tcpip.Address, port uint16) net.Listener {
	fullAddr := tcpip.FullAddress{Addr: addr, Port: port, NIC: nicID}

	ln, err := gonet.NewListener(s, fullAddr, ipv4.ProtocolNumber)
	if err != nil {
		log.Fatalf("doorlockd: listener: %v", err)
	}

	return ln
}
