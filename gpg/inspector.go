// Package gpg inspects OpenPGP data for encryption markers without
// decrypting anything. It reads only packet headers: public-key encrypted
// session key packets name the recipients a message was sealed to, and
// symmetric-key session packets mark passphrase-encrypted data.
package gpg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// Result is the outcome of inspecting one stream.
type Result struct {
	Encrypted  bool
	Recipients []string
}

// Inspector reports whether a stream holds validly formatted encrypted
// data and, when identifiable, the key IDs it was encrypted to.
type Inspector interface {
	Inspect(r io.Reader) (Result, error)
}

var armorPrefix = []byte("-----BEGIN PGP")

// PacketInspector is the production Inspector. It understands both binary
// and ASCII-armored OpenPGP streams.
type PacketInspector struct{}

func NewPacketInspector() *PacketInspector {
	return &PacketInspector{}
}

func (pi *PacketInspector) Inspect(r io.Reader) (Result, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(len(armorPrefix))
	if err != nil && err != io.EOF {
		return Result{}, err
	}

	var body io.Reader = br
	if bytes.HasPrefix(prefix, armorPrefix) {
		block, err := armor.Decode(br)
		if err != nil {
			// Armor header with a broken body is not valid encrypted data.
			return Result{}, nil
		}
		body = block.Body
	}

	return inspectPackets(body), nil
}

func inspectPackets(r io.Reader) Result {
	var res Result
	pr := packet.NewReader(r)
	for {
		p, err := pr.Next()
		if err != nil {
			// io.EOF or a malformed packet ends the walk; the packets seen
			// so far decide the verdict.
			return res
		}
		switch pkt := p.(type) {
		case *packet.EncryptedKey:
			res.Encrypted = true
			if pkt.KeyId != 0 {
				res.Recipients = append(res.Recipients, FormatKeyID(pkt.KeyId))
			}
		case *packet.SymmetricKeyEncrypted:
			res.Encrypted = true
		case *packet.SymmetricallyEncrypted, *packet.AEADEncrypted:
			// The encrypted payload itself. Session key packets always
			// precede it, so the recipient list is complete here.
			res.Encrypted = true
			return res
		}
	}
}

// FormatKeyID renders a key ID in the long 16-digit hex form.
func FormatKeyID(id uint64) string {
	return fmt.Sprintf("%016X", id)
}
