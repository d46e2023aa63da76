package engine

import (
	"net/http"

	"github.com/law-makers/papers/pkg/models"
)

// ClassifyStatus maps an HTTP status code onto the fetch taxonomy
func ClassifyStatus(code int) models.FetchStatus {
	switch {
	case code >= 200 && code < 300:
		return models.FetchSuccess
	case code == http.StatusNotFound, code == http.StatusGone:
		return models.FetchNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusUnavailableForLegalReasons:
		return models.FetchBlocked
	default:
		return models.FetchNetworkError
	}
}
