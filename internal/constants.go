package internal

const (
	HeaderAcceptKey        = "Accept"
	HeaderAcceptValue      = "application/json"
	HeaderLinkKey          = "Link"
	HeaderUserAgentKey     = "User-Agent"
	AuthTokenPrefix        = "Bearer "
	DateLayout             = "2006-01-02"
	ServiceName            = "lms-reports"
	DefaultPageViewsWindow = 90
)
