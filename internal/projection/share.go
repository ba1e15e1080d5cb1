package projection

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/liste/internal/model"
)

// ShareText renders pending items as the plain-text list sent to a phone's
// share sheet.
func ShareText(pending []model.ShoppingItem) string {
	var b strings.Builder
	b.WriteString(baseTitle + " :\n\n")
	for i, it := range pending {
		if i > 0 {
			b.WriteByte('\n')
		}
		bullet := "•"
		if it.Urgent {
			bullet = "🔴"
		}
		fmt.Fprintf(&b, "%s %s (%s)", bullet, it.Label, it.Store)
	}
	return b.String()
}

// Age renders the time elapsed since createdAt (epoch ms) the way the list
// shows it: minutes under an hour, hours under a day, then days.
func Age(now time.Time, createdAt int64) string {
	minutes := (now.UnixMilli() - createdAt) / 60000
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("Il y a %d min", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("Il y a %dh", hours)
	}
	return fmt.Sprintf("Il y a %dj", hours/24)
}
