package storage

import (
	"bufio"
	"io"
	"net/http"
	"strings"

	"medique-api/internal/domain/gateway"
)

// sniffImage peeks at the first bytes of r and fails unless they look like an
// image. The returned reader still yields the full content.
func sniffImage(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", err
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", gateway.ErrNotAnImage
	}
	return br, contentType, nil
}
