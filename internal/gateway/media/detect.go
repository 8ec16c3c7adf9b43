package media

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME determines a MIME type using stdlib detection first and falling
// back to the broader mimetype library when ambiguous. The input should hold
// the first 512 bytes of content when available.
func DetectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(head).String()
}

// ExtensionFor returns a file extension (with dot) for sniffed content, or
// ".bin" when nothing better is known. Used to synthesise filenames for
// URL sends that carry no name anywhere.
func ExtensionFor(head []byte) string {
	if len(head) == 0 {
		return ".bin"
	}
	if ext := mimetype.Detect(head).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}
