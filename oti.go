// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

// ObjectTransmissionInformation describes how a transfer of TransferLength
// bytes is split into source blocks of SymbolSize-byte symbols. It is derived
// purely from the transfer length, the maximum transmission unit and the
// Config, so both ends of a transfer compute the same value independently.
type ObjectTransmissionInformation struct {
	TransferLength uint64
	SymbolSize     uint16
	SourceBlocks   uint64
	Alignment      uint8

	// partition of the source symbols into SourceBlocks blocks: the first
	// largeBlocks blocks have largeSymbols symbols, the rest smallSymbols.
	largeSymbols int
	smallSymbols int
	largeBlocks  uint64
}

// OTIWithDefaults returns the transmission information for transferLength
// bytes sent over packets of at most mtu bytes, using DefaultConfig.
func OTIWithDefaults(transferLength uint64, mtu uint16) ObjectTransmissionInformation {
	return NewOTI(transferLength, mtu, DefaultConfig)
}

// NewOTI returns the transmission information for transferLength bytes
// sent over packets of at most mtu bytes.
func NewOTI(transferLength uint64, mtu uint16, config Config) ObjectTransmissionInformation {
	config.Setup()

	symbolSize := mtu - mtu%uint16(config.Alignment)
	if symbolSize < uint16(config.Alignment) {
		symbolSize = uint16(config.Alignment)
	}

	oti := ObjectTransmissionInformation{
		TransferLength: transferLength,
		SymbolSize:     symbolSize,
		Alignment:      config.Alignment,
	}

	sourceSymbols := ceilDiv(transferLength, uint64(symbolSize))
	if sourceSymbols == 0 {
		return oti
	}

	oti.SourceBlocks = ceilDiv(sourceSymbols, uint64(config.MaxSourceSymbols))
	large, small, largeBlocks, _ := partition(sourceSymbols, oti.SourceBlocks)
	oti.largeSymbols = int(large)
	oti.smallSymbols = int(small)
	oti.largeBlocks = largeBlocks
	return oti
}

// SourceSymbols returns the number of source symbols across all blocks.
func (oti ObjectTransmissionInformation) SourceSymbols() uint64 {
	return ceilDiv(oti.TransferLength, uint64(oti.SymbolSize))
}

// BlockSymbols returns the number of source symbols in block sbn.
func (oti ObjectTransmissionInformation) BlockSymbols(sbn uint64) int {
	if sbn < oti.largeBlocks {
		return oti.largeSymbols
	}
	return oti.smallSymbols
}

// blockOffset returns the byte offset of block sbn within the payload.
func (oti ObjectTransmissionInformation) blockOffset(sbn uint64) uint64 {
	var symbols uint64
	if sbn < oti.largeBlocks {
		symbols = sbn * uint64(oti.largeSymbols)
	} else {
		symbols = oti.largeBlocks*uint64(oti.largeSymbols) + (sbn-oti.largeBlocks)*uint64(oti.smallSymbols)
	}
	return symbols * uint64(oti.SymbolSize)
}

// partition splits i items into j nearly equal parts: jl parts of il items
// followed by js parts of is items.
func partition(i, j uint64) (il, is, jl, js uint64) {
	il = ceilDiv(i, j)
	is = i / j
	jl = i - is*j
	js = j - jl
	return il, is, jl, js
}

func ceilDiv(a, b uint64) uint64 {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}
