package rest

import "net/http"

// statusClass describes the class of the response status, like "client error".
//
// ok is true only for 2xx.
func statusClass(resp *http.Response) (class string, ok bool) {
	switch resp.StatusCode / 100 {
	case 1:
		return "informational response", false
	case 2:
		return "success", true
	case 3:
		return "redirect", false
	case 4:
		return "client error", false
	case 5:
		return "server error", false
	}
	return "unexpected status", false
}
