package domain

// FetchStatus classifies the outcome of one source retrieval.
type FetchStatus string

const (
	FetchSuccess      FetchStatus = "success"
	FetchHTTPError    FetchStatus = "http_error"
	FetchTimeout      FetchStatus = "timeout"
	FetchNetworkError FetchStatus = "network_error"
	// FetchSkipped means the source was never fetched, e.g. robots.txt
	// disallows the path.
	FetchSkipped FetchStatus = "skipped"
)

// FetchResult is the outcome of one network retrieval attempt for a source,
// after retries are exhausted. Body is set only on success and is discarded
// once extraction has run.
type FetchResult struct {
	SourceName string
	Status     FetchStatus
	HTTPStatus int
	Body       string
	Err        error
}

// OK reports whether the fetch produced a usable body.
func (r FetchResult) OK() bool {
	return r.Status == FetchSuccess
}
