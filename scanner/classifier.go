package scanner

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/djherbis/times"
	"github.com/h2non/filetype"

	"gpgsweep/config"
	"gpgsweep/gpg"
	"gpgsweep/hasher"
	"gpgsweep/logger"
	"gpgsweep/report"
)

func init() {
	// filetype has no OpenPGP matcher of its own; binary session key
	// packet headers (tags 1 and 3, old and new format) identify one.
	pgpType := filetype.NewType("pgp", "application/pgp-encrypted")
	filetype.AddMatcher(pgpType, func(buf []byte) bool {
		if len(buf) < 2 {
			return false
		}
		switch buf[0] {
		case 0x84, 0x85, 0x8C, 0x8D, 0xC1, 0xC3:
			return true
		}
		return false
	})
}

// Classifier turns file paths into report records using the injected
// inspection collaborator. It never fails a scan over one bad file.
type Classifier struct {
	inspector gpg.Inspector
	cfg       *config.Config
}

func NewClassifier(inspector gpg.Inspector, cfg *config.Config) *Classifier {
	return &Classifier{inspector: inspector, cfg: cfg}
}

// Classify inspects one file. Unreadable or malformed files come back as
// not encrypted; classification failure is not a scan failure.
func (c *Classifier) Classify(ctx context.Context, path string) report.FileRecord {
	rec := report.FileRecord{Path: path}

	select {
	case <-ctx.Done():
		return rec
	default:
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Debugf("Failed to open %s: %v", path, err)
		return rec
	}
	res, err := c.inspector.Inspect(f)
	f.Close()
	if err != nil {
		logger.Debugf("Failed to inspect %s: %v", path, err)
		return rec
	}

	rec.IsEncrypted = res.Encrypted
	if res.Encrypted && len(res.Recipients) > 0 {
		rec.Recipients = res.Recipients
		rec.RecipientUID = res.Recipients[0]
	}

	if c.cfg.Detail {
		c.collectDetail(&rec)
	}
	return rec
}

func (c *Classifier) collectDetail(rec *report.FileRecord) {
	if info, err := os.Stat(rec.Path); err == nil {
		rec.Size = info.Size()
		rec.ModTime = info.ModTime().Format(time.RFC3339)
	}
	if ts, err := times.Stat(rec.Path); err == nil {
		rec.AccessTime = ts.AccessTime().Format(time.RFC3339)
		if ts.HasChangeTime() {
			rec.ChangeTime = ts.ChangeTime().Format(time.RFC3339)
		}
		if ts.HasBirthTime() {
			rec.CreationTime = ts.BirthTime().Format(time.RFC3339)
		}
	}
	if mimeType, err := sniffMimeType(rec.Path); err == nil {
		rec.MimeType = mimeType
	}
	rec.Hashes = hasher.ComputeHashes(rec.Path, c.cfg.HashAlgorithms)
}

func sniffMimeType(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, 261)
	_, err = file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	kind, err := filetype.Match(buf)
	if err != nil {
		return "", err
	}
	if kind == filetype.Unknown || kind.MIME.Value == "" {
		return "unknown", nil
	}
	return kind.MIME.Value, nil
}
