package gateway

import (
	"io"
	"log"
	"net/http"
)

// HTTP adapts a service to net/http. It flattens the incoming request
// into an event, invokes the handler with the request context, and
// writes the result back verbatim.
func HTTP(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("failed to read request body: %v", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		headers := make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			if len(values) > 0 {
				headers[http.CanonicalHeaderKey(name)] = values[0]
			}
		}

		resp := h.Handle(r.Context(), Request{
			HTTPMethod: r.Method,
			Headers:    headers,
			Body:       string(body),
		})

		for name, value := range resp.Headers {
			w.Header().Set(name, value)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			log.Printf("failed to write response: %v", err)
		}
	})
}
