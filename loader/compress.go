package loader

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// decompress wraps r in a decoder for codec (a file extension). The returned
// closer, when non-nil, releases the decoder.
func decompress(r io.Reader, codec string) (io.Reader, io.Closer, error) {
	switch codec {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, zr, nil
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		rc := dec.IOReadCloser()
		return rc, rc, nil
	case ".lz4":
		return lz4.NewReader(r), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression %q", codec)
	}
}
