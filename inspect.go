package st8

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// InspectHandler returns an [http.Handler] that reports every store
// registered with reg as a JSON-encoded [RegistrySnapshot]. With a
// ?store=name query it reports that single store's [StoreStatus] instead,
// or 404 if no store has that name.
func InspectHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		var body any = reg.Snapshot()

		if name := req.URL.Query().Get("store"); name != "" {
			sr, ok := reg.Lookup(name)
			if !ok {
				http.Error(writer, ErrUnknownStore.Error(), http.StatusNotFound)
				return
			}

			body = sr.Status()
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusOK)

		//nolint:errcheck // best-effort JSON encoding to HTTP response
		_ = json.NewEncoder(writer).Encode(body)
	})
}
