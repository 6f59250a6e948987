package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/quantgems/adminapi/internal/model"
)

// writeJSON serializes v as JSON and writes it with the given HTTP status
// code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOK writes a 200 success envelope wrapping data.
func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, model.OK(data))
}

// writeFail writes a failed envelope with the given status and message.
func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Fail(message))
}

// readJSON decodes the request body as JSON into v. The body is closed
// after decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt extracts an integer query parameter, returning defaultVal if
// the parameter is missing or cannot be parsed.
func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// clientIP returns the caller address without the port. RemoteAddr has
// already been rewritten by the RealIP middleware when the request came
// through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
