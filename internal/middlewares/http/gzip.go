package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// GzipMiddleware handles gzip on both sides of a request.
//
// Request bodies marked "Content-Encoding: gzip" are decompressed before
// the handler sees them. Responses are buffered and, when the client sent
// "Accept-Encoding: gzip" and the body is a text exposition (text/plain or
// application/openmetrics-text), compressed on the way out.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			decompressed, err := decompress(body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(decompressed))
			r.Header.Del("Content-Encoding")
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			gzw := newGzipBufferResponseWriter(w)
			next.ServeHTTP(gzw, r)
			_ = gzw.Flush()
			return
		}

		next.ServeHTTP(w, r)
	})
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	if _, err := gzw.Write(data); err != nil {
		_ = gzw.Close()
		return nil, err
	}
	if err := gzw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, gr); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// gzipBufferResponseWriter buffers the response body so the middleware can
// decide after the handler ran whether the content type is compressible.
type gzipBufferResponseWriter struct {
	http.ResponseWriter
	buf         *bytes.Buffer
	statusCode  int
	wroteHeader bool
}

func newGzipBufferResponseWriter(w http.ResponseWriter) *gzipBufferResponseWriter {
	return &gzipBufferResponseWriter{
		ResponseWriter: w,
		buf:            &bytes.Buffer{},
		statusCode:     http.StatusOK,
	}
}

// WriteHeader buffers the HTTP status code to send later.
func (w *gzipBufferResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
}

// Write buffers the response body bytes.
func (w *gzipBufferResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// Flush compresses the buffered body if the content type calls for it and
// writes headers and body to the underlying ResponseWriter.
func (w *gzipBufferResponseWriter) Flush() error {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	contentType := strings.ToLower(w.Header().Get("Content-Type"))
	shouldCompress := strings.Contains(contentType, "text/plain") ||
		strings.Contains(contentType, "application/openmetrics-text")

	body := w.buf.Bytes()
	if shouldCompress {
		compressed, err := compress(body)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.ResponseWriter.WriteHeader(w.statusCode)
		_, err = w.ResponseWriter.Write(compressed)
		return err
	}

	w.ResponseWriter.WriteHeader(w.statusCode)
	_, err := w.ResponseWriter.Write(body)
	return err
}
