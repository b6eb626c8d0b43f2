package capture

import (
	"encoding/base64"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// basicAuthHeader makes every request of the tab carry Basic Auth
// credentials, so a protected /grid can be captured.
func basicAuthHeader(username, password string) chromedp.Action {
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Authorization": "Basic " + basicAuthToken(username, password),
		}),
	}
}

func basicAuthToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
