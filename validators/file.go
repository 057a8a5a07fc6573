package validators

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

var allowedTypes = map[string]string{
	"application/pdf": "application/pdf",
	"image/jpeg":      "image/jpeg",
	"image/jpg":       "image/jpeg",
	"image/png":       "image/png",
}

// ValidateFileType reports whether a declared MIME type is an accepted
// identity document format.
func ValidateFileType(contentType string) bool {
	_, ok := allowedTypes[baseType(contentType)]
	return ok
}

// ValidateFileSize reports whether size is below MaxFileSize.
func ValidateFileSize(size int64) bool {
	return size >= 0 && size < MaxFileSize
}

// ValidateDocument checks the declared type and size of an uploaded document
// and that its content actually looks like the declared type.
func ValidateDocument(file *multipart.FileHeader) error {
	if file == nil {
		return invalid("document", "file field is required")
	}
	declared := file.Header.Get("Content-Type")
	if !ValidateFileType(declared) {
		return invalid("document", "please upload a PDF, JPG, JPEG, or PNG file")
	}
	if !ValidateFileSize(file.Size) {
		return invalid("document", "file size exceeds the maximum limit of 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "open document")
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errors.Wrap(err, "read document")
	}
	sniffed := baseType(http.DetectContentType(head[:n]))
	if allowedTypes[baseType(declared)] != allowedTypes[sniffed] {
		return invalid("document", "file content does not match its type")
	}
	return nil
}

func baseType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}
