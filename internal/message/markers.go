package message

import (
	"regexp"
	"strconv"
	"strings"
)

// Bracket markers written by the ingestion path when a payload is flattened to text.
var (
	locationMarker    = regexp.MustCompile(`\[Location:\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\]`)
	contactMarker     = regexp.MustCompile(`(?i)^\[Contact(?: Card)?(?::\s*([^\]]*))?\]`)
	orderMarker       = regexp.MustCompile(`(?i)^\[Order(?::\s*([^\]]*))?\]`)
	paymentMarker     = regexp.MustCompile(`(?i)^\[Payment(?::\s*([^\]]*))?\]`)
	buttonMarker      = regexp.MustCompile(`(?i)^\[Button(?::\s*([^\]]*))?\]`)
	systemMarker      = regexp.MustCompile(`(?i)^\[System(?::\s*([^\]]*))?\]`)
	unsupportedMarker = regexp.MustCompile(`(?i)^\[Unsupported(?::\s*([^\]]*))?\]`)
	interactiveMarker = regexp.MustCompile(`(?i)^\[(Button Reply|List Reply|Flow Response)(?::\s*([^\]]*))?\]`)
)

var allMarkers = []*regexp.Regexp{
	locationMarker,
	contactMarker,
	orderMarker,
	paymentMarker,
	buttonMarker,
	systemMarker,
	unsupportedMarker,
	interactiveMarker,
}

func hasMarker(content string) bool {
	for _, re := range allMarkers {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// markerText returns the text after the colon of a marker, or "" if absent.
func markerText(re *regexp.Regexp, content string) string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[len(m)-1])
}

func parseLocation(content string) (Location, bool) {
	m := locationMarker.FindStringSubmatch(content)
	if m == nil {
		return Location{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Location{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Location{}, false
	}
	return Location{Lat: lat, Lng: lng}, true
}

func parseInteractive(content string) Interactive {
	m := interactiveMarker.FindStringSubmatch(content)
	if m == nil {
		return Interactive{Kind: InteractiveOther, Title: content}
	}
	kind := InteractiveOther
	switch strings.ToLower(m[1]) {
	case "button reply":
		kind = InteractiveButtonReply
	case "list reply":
		kind = InteractiveListReply
	case "flow response":
		kind = InteractiveFlowResponse
	}
	return Interactive{Kind: kind, Title: strings.TrimSpace(m[2])}
}
