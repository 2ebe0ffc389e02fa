// Package responsewriter wraps http.ResponseWriter to capture the
// status code and body size for logging and metrics middleware.
package responsewriter

import "net/http"

// Recorder records the status code and bytes written by a handler.
type Recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

// Wrap returns a Recorder around w. The status defaults to 200 because
// handlers that never call WriteHeader still respond 200.
func Wrap(w http.ResponseWriter) *Recorder {
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *Recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *Recorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// StatusCode returns the recorded status code.
func (r *Recorder) StatusCode() int { return r.status }

// BytesWritten returns the number of body bytes written.
func (r *Recorder) BytesWritten() int { return r.bytes }
