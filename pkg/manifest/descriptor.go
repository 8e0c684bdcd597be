package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Asset describes one release artifact ready to be merged: the technical
// fields computed from its content plus the resolved UI metadata.
type Asset struct {
	Filename string
	URL      string
	Bytes    int64
	SHA256   string
	Meta     Meta
}

// NewAsset builds an Asset by consuming r: the byte count and the lowercase
// hex SHA-256 are computed from the stream. The caller supplies metadata
// afterwards by setting Meta.
func NewAsset(filename, url string, r io.Reader) (Asset, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Asset{}, fmt.Errorf("hashing %s: %w", filename, err)
	}
	return Asset{
		Filename: filename,
		URL:      url,
		Bytes:    n,
		SHA256:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}
