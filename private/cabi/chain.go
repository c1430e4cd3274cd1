// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cabi

// #include "raptorq_types.h"
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"storj.io/raptorq/private/cmem"
)

type packetNode = C.struct_raptorq_encoding_packet

// Encode implements raptorq_encode. It returns the head of a chain holding
// the serialized systematic packets followed by repair packets, or nil when
// enc is not a live encoder.
func (abi *ABI) Encode(enc unsafe.Pointer, repair uint32) (head unsafe.Pointer) {
	defer recovered("raptorq_encode")

	session, ok := abi.encoder(enc)
	if !ok {
		return nil
	}

	packets, ok := abi.serializedPackets("raptorq_encode", session, repair)
	if !ok {
		return nil
	}
	return abi.buildChain(packets)
}

// buildChain links packets back to front so the head is the first packet.
func (abi *ABI) buildChain(packets [][]byte) unsafe.Pointer {
	var head *packetNode
	for i := len(packets) - 1; i >= 0; i-- {
		data := cmem.Bytes(abi.alloc, packets[i])
		if data == nil {
			abi.releaseChain(head)
			Logger().Error("allocating packet failed", zap.Int("index", i))
			return nil
		}

		p := abi.alloc.Alloc(unsafe.Sizeof(packetNode{}))
		if p == nil {
			abi.alloc.Free(data)
			abi.releaseChain(head)
			Logger().Error("allocating packet node failed", zap.Int("index", i))
			return nil
		}

		node := (*packetNode)(p)
		node.next = head
		node.len = C.size_t(len(packets[i]))
		node.data = (*C.uint8_t)(data)
		head = node
	}
	return unsafe.Pointer(head)
}

// ReleaseEncodingPacket implements raptorq_release_encoding_packet. It frees
// the node's data and then the node, without following next.
func (abi *ABI) ReleaseEncodingPacket(p unsafe.Pointer) {
	defer recovered("raptorq_release_encoding_packet")

	if p == nil {
		return
	}
	node := (*packetNode)(p)
	abi.alloc.Free(unsafe.Pointer(node.data))
	abi.alloc.Free(p)
}

// ReleaseEncodingPackets implements raptorq_release_encoding_packets. It
// releases every node up to the terminator.
func (abi *ABI) ReleaseEncodingPackets(head unsafe.Pointer) {
	defer recovered("raptorq_release_encoding_packets")

	abi.releaseChain((*packetNode)(head))
}

func (abi *ABI) releaseChain(node *packetNode) {
	for node != nil {
		next := node.next
		abi.alloc.Free(unsafe.Pointer(node.data))
		abi.alloc.Free(unsafe.Pointer(node))
		node = next
	}
}

// ChainNext returns the node following p, or nil at the terminator.
func ChainNext(p unsafe.Pointer) unsafe.Pointer {
	if p == nil {
		return nil
	}
	return unsafe.Pointer((*packetNode)(p).next)
}

// ChainLen returns the number of nodes in the chain starting at head.
func ChainLen(head unsafe.Pointer) int {
	n := 0
	for p := head; p != nil; p = ChainNext(p) {
		n++
	}
	return n
}

// ChainPackets returns a Go copy of every packet in the chain starting at
// head. The chain is left untouched.
func ChainPackets(head unsafe.Pointer) [][]byte {
	var packets [][]byte
	for p := head; p != nil; p = ChainNext(p) {
		node := (*packetNode)(p)
		packets = append(packets, cmem.Copy(unsafe.Pointer(node.data), int(node.len)))
	}
	return packets
}
