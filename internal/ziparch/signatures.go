// Package ziparch implements a ZIP structural reader and writer: a
// single-pass PK-signature scanner that pairs Local File Headers with
// Central Directory Headers independently of
// the standard library's archive/zip (which refuses or silently merges
// exactly the malformed structures this tool exists to preserve), plus a
// writer with exact control over permission bits, extra fields, and
// offsets, and the polyglot offset-patching rewriter.
//
// The wire-level struct layout and writer cursor style are grounded on
// github.com/martin-sucha/zipserve (struct.go, writer.go); the scan and
// pairing algorithm is grounded on original_source/handlers/extended_zipfile.py.
package ziparch

import "bytes"

// SignatureKind classifies a "PK" occurrence by its following two bytes.
type SignatureKind int

const (
	SigUnknown SignatureKind = iota
	SigLFH
	SigCDH
	SigEOCD
	SigDataDescriptor
	SigZip64EOCD
	SigZip64EOCDLocator
)

func (k SignatureKind) String() string {
	switch k {
	case SigLFH:
		return "LFH"
	case SigCDH:
		return "CDH"
	case SigEOCD:
		return "EOCD"
	case SigDataDescriptor:
		return "DataDescriptor"
	case SigZip64EOCD:
		return "Zip64EOCD"
	case SigZip64EOCDLocator:
		return "Zip64EOCDLocator"
	default:
		return "Unknown"
	}
}

// Fixed-size portions of each record.
const (
	lfhFixedSize  = 30
	cdhFixedSize  = 46
	eocdFixedSize = 22

	sigLFHBytes  = "PK\x03\x04"
	sigCDHBytes  = "PK\x01\x02"
	sigEOCDBytes = "PK\x05\x06"
	sigDDBytes   = "PK\x07\x08"
	sigZ64EBytes = "PK\x06\x06"
	sigZ64LBytes = "PK\x06\x07"
)

// PKSignature is one raw "PK" occurrence found during the signature sweep.
type PKSignature struct {
	Offset int64
	Kind   SignatureKind
}

func classify(four []byte) SignatureKind {
	switch string(four) {
	case sigLFHBytes:
		return SigLFH
	case sigCDHBytes:
		return SigCDH
	case sigEOCDBytes:
		return SigEOCD
	case sigDDBytes:
		return SigDataDescriptor
	case sigZ64EBytes:
		return SigZip64EOCD
	case sigZ64LBytes:
		return SigZip64EOCDLocator
	default:
		return SigUnknown
	}
}

// scanSignatures finds every "PK" prefix in
// buf, advancing by 2 bytes (not 4) so overlapping or adversarially placed
// signatures inside comments or compressed data are still found, and
// classify each by its following two bytes.
func scanSignatures(buf []byte) []PKSignature {
	var found []PKSignature
	offset := 0
	for {
		idx := bytes.Index(buf[offset:], []byte("PK"))
		if idx == -1 {
			break
		}
		pos := offset + idx
		if pos+4 <= len(buf) {
			if kind := classify(buf[pos : pos+4]); kind != SigUnknown {
				found = append(found, PKSignature{Offset: int64(pos), Kind: kind})
			}
		}
		offset = pos + 2
	}
	return found
}
