package http

import (
	"encoding/json"
	"net/http"
	"net/url"
)

type Decoder interface {
	Decode(dst any, src map[string][]string) error
}

func MarshalJSON(w http.ResponseWriter, i any) {
	MarshalJSONWithStatus(w, i, http.StatusOK)
}

func MarshalJSONWithStatus(w http.ResponseWriter, i any, status int) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if i == nil || (i == "") {
		return
	}
	err := json.NewEncoder(w).Encode(i)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// MergeQueryParams appends params to the query of uri, keeping
// already present parameters, and returns the encoded result.
func MergeQueryParams(uri *url.URL, params url.Values) string {
	query := uri.Query()
	for param, values := range params {
		for _, value := range values {
			query.Add(param, value)
		}
	}
	uri.RawQuery = query.Encode()
	return uri.String()
}

// AddQueryParam appends a single url encoded key=value pair to rawURL.
func AddQueryParam(rawURL, key, value string) (string, error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return MergeQueryParams(uri, url.Values{key: {value}}), nil
}
