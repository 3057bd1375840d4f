package client

import (
	"net/url"
	"strings"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/internal"
	"go.uber.org/zap"
)

func (c *Client) printRequestDebugInfo(endpoint string, params url.Values) {
	sugar := zap.S()
	sugar.Debugf("\nGenerated cURL command:\n")

	if encoded := params.Encode(); encoded != "" {
		separator := "?"
		if strings.Contains(endpoint, "?") {
			separator = "&"
		}
		endpoint += separator + encoded
	}

	sugar.Debugf("curl --location --request GET '%s' \\", endpoint)
	sugar.Debugf("  --header \"%s: %s${%s_API_TOKEN}\" \\", c.Config.AuthHeader, internal.AuthTokenPrefix, strings.ToUpper(c.Config.Name))
	sugar.Debugf("  --header '%s: %s' \\", internal.HeaderAcceptKey, internal.HeaderAcceptValue)
	sugar.Debugf("  --header '%s: %s'", internal.HeaderUserAgentKey, c.Config.UserAgent)
}

func (c *Client) printResponseDebugInfo(res api.HTTPResponse) {
	sugar := zap.S()
	sugar.Debugf("\nResponse [status=%d]\n", res.Status)
	if link := res.Header(internal.HeaderLinkKey); link != "" {
		sugar.Debugf("%s: %s", internal.HeaderLinkKey, link)
	}
	sugar.Debugf("%s\n", res.Body)
}
