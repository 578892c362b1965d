package postview

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// Platform selects the maps deep link flavour
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// ParsePlatform maps a client hint to a Platform. Unknown values are treated as web.
func ParsePlatform(s string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformIOS:
		return PlatformIOS
	case PlatformAndroid:
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// CardView is a render-ready snapshot of one mounted post
type CardView struct {
	ViewID        string
	PostID        string
	PostKey       string
	Kind          string
	Username      string
	Description   string
	Truncated     bool
	Pictures      []string
	Ingredients   []string
	Liked         bool
	CountText     string
	Loading       bool
	Pending       bool // a like request has not settled; the count may still move
	CountFailed   bool
	RelativeAge   string
	OwnerControls bool
	MapsLink      string
	CommentsLink  string
	CommentCount  int
}

// mapsLink builds the platform deep link for a byte's location
func mapsLink(platform Platform, location string) string {
	q := url.QueryEscape(location)
	if platform == PlatformIOS {
		return "maps://0,0?q=" + q
	}
	return "geo:0,0?q=" + q
}

// preview cuts s to at most limit grapheme clusters. limit <= 0 disables truncation.
func preview(s string, limit int) (string, bool) {
	if limit <= 0 || uniseg.GraphemeClusterCount(s) <= limit {
		return s, false
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < limit && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return strings.TrimRightFunc(b.String(), isSpace) + "…", true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

// relativeAge renders how long ago t was, coarsening as it gets older
func relativeAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
