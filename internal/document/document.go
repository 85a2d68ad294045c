package document

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrPDFNotSupported is returned for PDFs; their text must be extracted
	// beforehand and loaded as .txt.
	ErrPDFNotSupported = errors.New("pdf text extraction is not available")
)

// Document is a price list as text plus the label used as its source.
type Document struct {
	Name string
	Text string
}

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// Load reads a local price list.
func Load(p string) (Document, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", p)
	}
	name := filepath.Base(p)
	text, err := decode(name, "", b)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: name, Text: text}, nil
}

// Fetch downloads a remote price list.
func Fetch(url string) (Document, error) {
	resp, err := defaultHTTPClient.Get(url)
	if err != nil {
		return Document{}, errors.Wrapf(err, "get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, errors.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", url)
	}

	name := path.Base(strings.SplitN(url, "?", 2)[0])
	text, err := decode(name, resp.Header.Get("Content-Type"), b)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: name, Text: text}, nil
}

// FromBytes decodes an uploaded file by its name.
func FromBytes(name string, b []byte) (Document, error) {
	text, err := decode(name, "", b)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: name, Text: text}, nil
}

// IsURL reports whether arg should be fetched instead of read from disk.
func IsURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

func decode(name, contentType string, b []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	ct := strings.ToLower(contentType)
	switch {
	case ext == ".pdf" || strings.Contains(ct, "application/pdf"):
		return "", errors.Wrap(ErrPDFNotSupported, name)
	case ext == ".html" || ext == ".htm" || strings.Contains(ct, "text/html"):
		return HTMLToText(bytes.NewReader(b))
	case ext == ".txt" || ext == ".csv" || strings.HasPrefix(ct, "text/"):
		return string(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))), nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", name)
}
