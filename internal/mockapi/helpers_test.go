package mockapi

import (
	"bytes"
	"mime/multipart"
	"strconv"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// newMultipart writes a design upload form into buf and returns its content type.
func newMultipart(buf *bytes.Buffer) string {
	w := multipart.NewWriter(buf)
	_ = w.WriteField("note", "Title: Neon | glow")
	_ = w.WriteField("printSize", "A4")
	_ = w.WriteField("quantity", "2")
	part, _ := w.CreateFormFile("design", "neon.png")
	_, _ = part.Write([]byte("png"))
	_ = w.Close()
	return w.FormDataContentType()
}
