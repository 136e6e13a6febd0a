package share

import (
	"fmt"
	"net/url"

	"github.com/joshua-hq/warroom/pkg/domain/model/report"
)

// Pure link templating for external collaborators. Nothing here makes
// a network call; the links are handed to the UI as-is.

// WarRoomURL returns the shared video room for the given app
// namespace.
func WarRoomURL(appID string) string {
	return fmt.Sprintf("https://meet.jit.si/%s_WarRoom", url.PathEscape(appID))
}

// ReportLink builds a pre-filled outbound share link for a report on
// an external messaging service.
func ReportLink(r *report.Report) string {
	text := fmt.Sprintf("%s - %s: %q", r.AuthorName, r.VerseRef, r.Revelation)
	if r.Feedback != nil {
		text += "\n" + r.Feedback.Encouragement
	}
	return "https://wa.me/?text=" + url.QueryEscape(text)
}
