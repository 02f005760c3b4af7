package scanner

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gpgsweep/config"
	"gpgsweep/gpg"
)

// fakeInspector returns a canned result so classifier behavior is
// testable without real OpenPGP data.
type fakeInspector struct {
	result gpg.Result
	err    error
}

func (f fakeInspector) Inspect(r io.Reader) (gpg.Result, error) {
	_, _ = io.Copy(io.Discard, r)
	return f.result, f.err
}

func testConfig() *config.Config {
	return &config.Config{HashAlgorithms: []string{"sha256"}}
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestClassifyEncryptedWithRecipients(t *testing.T) {
	path := writeTemp(t, []byte("x"))
	c := NewClassifier(fakeInspector{result: gpg.Result{
		Encrypted:  true,
		Recipients: []string{"ABCD1234ABCD1234", "5678EF905678EF90"},
	}}, testConfig())

	rec := c.Classify(context.Background(), path)
	if !rec.IsEncrypted {
		t.Fatal("expected encrypted")
	}
	if rec.RecipientUID != "ABCD1234ABCD1234" {
		t.Fatalf("expected first recipient as primary, got %s", rec.RecipientUID)
	}
	if len(rec.Recipients) != 2 {
		t.Fatalf("recipient list not kept: %v", rec.Recipients)
	}
}

func TestClassifyEncryptedNoRecipient(t *testing.T) {
	path := writeTemp(t, []byte("x"))
	c := NewClassifier(fakeInspector{result: gpg.Result{Encrypted: true}}, testConfig())

	rec := c.Classify(context.Background(), path)
	if !rec.IsEncrypted {
		t.Fatal("expected encrypted")
	}
	if rec.RecipientUID != "" {
		t.Fatalf("expected empty recipient, got %s", rec.RecipientUID)
	}
}

func TestClassifyNotEncrypted(t *testing.T) {
	path := writeTemp(t, []byte("plain"))
	c := NewClassifier(fakeInspector{}, testConfig())

	rec := c.Classify(context.Background(), path)
	if rec.IsEncrypted {
		t.Fatal("expected not encrypted")
	}
	if rec.RecipientUID != "" || rec.Recipients != nil {
		t.Fatalf("invariant broken: %+v", rec)
	}
}

func TestClassifyInspectorError(t *testing.T) {
	path := writeTemp(t, []byte("x"))
	c := NewClassifier(fakeInspector{err: io.ErrUnexpectedEOF}, testConfig())

	rec := c.Classify(context.Background(), path)
	if rec.IsEncrypted || rec.RecipientUID != "" {
		t.Fatalf("inspection failure must classify as not encrypted: %+v", rec)
	}
}

func TestClassifyUnreadableFile(t *testing.T) {
	c := NewClassifier(fakeInspector{result: gpg.Result{Encrypted: true}}, testConfig())

	rec := c.Classify(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if rec.IsEncrypted || rec.RecipientUID != "" {
		t.Fatalf("unreadable file must classify as not encrypted: %+v", rec)
	}
}

func TestClassifyCancelledContext(t *testing.T) {
	path := writeTemp(t, []byte("x"))
	c := NewClassifier(fakeInspector{result: gpg.Result{Encrypted: true}}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := c.Classify(ctx, path)
	if rec.IsEncrypted {
		t.Fatal("cancelled classification should not inspect")
	}
	if rec.Path != path {
		t.Fatalf("record path missing: %+v", rec)
	}
}

func TestClassifyWithPacketInspector(t *testing.T) {
	// End to end against the production inspector: a v3 PKESK packet.
	body := []byte{3}
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, 0xABCDEF0123456789)
	body = append(body, id...)
	body = append(body, 1, 0x00, 0x08, 0x42)
	pkt := append([]byte{0x84, byte(len(body))}, body...)

	path := writeTemp(t, pkt)
	c := NewClassifier(gpg.NewPacketInspector(), testConfig())

	rec := c.Classify(context.Background(), path)
	if !rec.IsEncrypted || rec.RecipientUID != "ABCDEF0123456789" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestClassifyDetail(t *testing.T) {
	path := writeTemp(t, []byte("hello"))
	cfg := testConfig()
	cfg.Detail = true
	c := NewClassifier(fakeInspector{}, cfg)

	rec := c.Classify(context.Background(), path)
	if rec.Size != 5 {
		t.Fatalf("unexpected size: %d", rec.Size)
	}
	if rec.ModTime == "" || rec.AccessTime == "" {
		t.Fatalf("timestamps missing: %+v", rec)
	}
	if rec.MimeType == "" {
		t.Fatal("mime type missing")
	}
	if rec.Hashes["sha256"] != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected sha256: %s", rec.Hashes["sha256"])
	}
}

func TestSniffMimeTypeRecognizesPGP(t *testing.T) {
	pkt := []byte{0x85, 0x00, 0x0D, 3, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0x00, 0x08, 0x42}
	path := writeTemp(t, pkt)
	mimeType, err := sniffMimeType(path)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if mimeType != "application/pgp-encrypted" {
		t.Fatalf("unexpected mime type: %s", mimeType)
	}
}
