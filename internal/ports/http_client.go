package ports

import "net/http"

// HTTPClient is the transport used by the HTTP artifact uploader.
// *http.Client satisfies it; tests substitute a recording client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
