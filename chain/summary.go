package chain

import (
	"bytes"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/sardanioss/pinguard/chainsrc"
)

// Summary is the redacted, best-effort telemetry view of a chain. Its
// fields are never a trust input — only the pin evaluation in package trust
// decides trust.
type Summary struct {
	LeafCommonName   *string
	IssuerCommonName *string
	SANCount         uint32
}

// subjectAltNameOID is the DER encoding of id-ce-subjectAltName
// (2.5.29.17), tag+length+value: 06 03 55 1D 11.
var subjectAltNameOID = []byte{0x06, 0x03, 0x55, 0x1d, 0x11}

// Summarize builds a ChainSummary from the leaf certificate (certs[0]) and,
// when present, the certificate immediately following it.
func Summarize(certs []chainsrc.Certificate) Summary {
	if len(certs) == 0 {
		return Summary{}
	}

	leaf := certs[0]
	leafCN, _ := leaf.SubjectSummary()

	issuerCN := issuerCommonName(leaf, certs)
	sanCount := subjectAlternativeNameCount(leaf.DER())

	return Summary{
		LeafCommonName:   redact(leafCN),
		IssuerCommonName: redact(issuerCN),
		SANCount:         sanCount,
	}
}

// issuerCommonName locates the certificate immediately following the leaf
// (by byte-equal DER match of the leaf; falling back to index 1 if the leaf
// cannot be located but the chain has at least two entries) and returns its
// subject summary. If no issuer candidate exists, it falls back to the
// leaf's own subject summary — a best-effort telemetry heuristic, never a
// trust input.
func issuerCommonName(leaf chainsrc.Certificate, certs []chainsrc.Certificate) string {
	leafDER := leaf.DER()

	issuerIdx := -1
	for i, c := range certs {
		if bytes.Equal(c.DER(), leafDER) {
			issuerIdx = i + 1
			break
		}
	}
	if issuerIdx == -1 && len(certs) >= 2 {
		issuerIdx = 1
	}

	if issuerIdx >= 0 && issuerIdx < len(certs) {
		if cn, ok := certs[issuerIdx].SubjectSummary(); ok {
			return cn
		}
	}

	cn, _ := leaf.SubjectSummary()
	return cn
}

// redact reduces a subject common name to "*." + the last two
// dot-separated labels, lowercased. Names with fewer than two labels redact
// to nil.
func redact(cn string) *string {
	if cn == "" {
		return nil
	}
	labels := strings.Split(cn, ".")
	if len(labels) < 2 {
		return nil
	}
	last := strings.ToLower(strings.Join(labels[len(labels)-2:], "."))
	out := "*." + last
	return &out
}

// subjectAlternativeNameCount scans der for occurrences of the
// subjectAltName OID and returns the maximum number of GeneralName entries
// successfully parsed out of any occurrence, or 0 if none parse. It never
// panics or reads out of bounds: cryptobyte's reader returns false on
// truncated, indefinite-length, or over-long DER rather than erroring.
func subjectAlternativeNameCount(der []byte) uint32 {
	var best uint32
	offset := 0
	for {
		idx := bytes.Index(der[offset:], subjectAltNameOID)
		if idx == -1 {
			break
		}
		pos := offset + idx + len(subjectAltNameOID)
		if n, ok := parseSANExtensionTail(der[pos:]); ok && n > best {
			best = n
		}
		offset = offset + idx + 1
	}
	return best
}

// parseSANExtensionTail parses the bytes following a subjectAltName OID:
// an optional BOOLEAN critical flag, then the wrapping OCTET STRING, whose
// contents must be a SEQUENCE OF GeneralName. It returns the element count
// and whether parsing succeeded.
func parseSANExtensionTail(tail []byte) (uint32, bool) {
	s := cryptobyte.String(tail)

	if s.PeekASN1Tag(casn1.BOOLEAN) {
		var critical cryptobyte.String
		if !s.ReadASN1(&critical, casn1.BOOLEAN) {
			return 0, false
		}
	}

	var octet cryptobyte.String
	if !s.ReadASN1(&octet, casn1.OCTET_STRING) {
		return 0, false
	}

	var names cryptobyte.String
	if !octet.ReadASN1(&names, casn1.SEQUENCE) {
		return 0, false
	}

	var count uint32
	for !names.Empty() {
		var elem cryptobyte.String
		var tag casn1.Tag
		if !names.ReadAnyASN1Element(&elem, &tag) {
			return 0, false
		}
		count++
	}
	return count, true
}
