package upstream

// Endpoint names a remote query, used for metrics labels, cache keys and
// fallback error messages.
type Endpoint string

const (
	EndpointNewItems       Endpoint = "newItems"
	EndpointHotCollections Endpoint = "hotCollections"
	EndpointTopSellers     Endpoint = "topSellers"
	EndpointExplore        Endpoint = "explore"
	EndpointAuthors        Endpoint = "authors"
	EndpointItemDetails    Endpoint = "itemDetails"
)

// Fixed per-endpoint fallback messages, used when the failure carries no
// usable message of its own.
var fallbackMessages = map[Endpoint]string{
	EndpointNewItems:       "Could not load new items.",
	EndpointHotCollections: "Could not load hot collections.",
	EndpointTopSellers:     "Failed to load top sellers.",
	EndpointExplore:        "Failed to load explore items.",
	EndpointAuthors:        "Failed to load author.",
	EndpointItemDetails:    "Could not load item details.",
}

// Error is a transport or HTTP failure from the remote source. Message is
// what a view should surface: the structured message from the failure
// payload when present, else the HTTP status text or raw failure
// description, else the endpoint's fixed fallback.
type Error struct {
	Endpoint Endpoint
	Status   int
	Message  string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(ep Endpoint, status int, message string) *Error {
	if message == "" {
		message = fallbackMessages[ep]
	}
	return &Error{Endpoint: ep, Status: status, Message: message}
}
