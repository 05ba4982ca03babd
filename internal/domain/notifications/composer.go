package notifications

import (
	"fmt"
	"strings"
	"time"
)

const composeTimeLayout = "Mon Jan 2, 15:04"

// Compose renderiza el mensaje humano de un intent. Es una función pura:
// mismo intent, mismo texto.
func Compose(in Intent) string {
	window := fmt.Sprintf("%s to %s",
		in.StartAt.Format(composeTimeLayout),
		in.EndAt.Format(time.Kitchen))

	var b strings.Builder

	switch in.Kind {
	case KindHangoutAvailable:
		fmt.Fprintf(&b, "A new hangout with %s is open for grabs: %s.", in.PupName, window)
		if in.Occurrences > 1 {
			fmt.Fprintf(&b, " It repeats for %d dates.", in.Occurrences)
		}
	case KindHangoutConfirmed:
		fmt.Fprintf(&b, "You're confirmed to hang out with %s: %s.", in.PupName, window)
		if in.Occurrences > 1 {
			fmt.Fprintf(&b, " The series covers %d dates.", in.Occurrences)
		}
	case KindHangoutRescheduled:
		fmt.Fprintf(&b, "Your hangout with %s moved to %s. Please re-confirm you can still make it.", in.PupName, window)
	case KindHangoutCancelled:
		fmt.Fprintf(&b, "Your hangout with %s (%s) was cancelled by the owner.", in.PupName, window)
	case KindHangoutRemoved:
		fmt.Fprintf(&b, "The open hangout with %s (%s) is no longer available.", in.PupName, window)
	case KindHangoutClaimed:
		fmt.Fprintf(&b, "%s claimed the hangout with %s: %s.", in.ActorName, in.PupName, window)
	case KindHangoutReleased:
		fmt.Fprintf(&b, "%s can no longer make the hangout with %s (%s). The slot is open again.", in.ActorName, in.PupName, window)
	case KindSuggestionReceived:
		fmt.Fprintf(&b, "%s suggested a hangout with %s: %s. It's waiting for your decision.", in.ActorName, in.PupName, window)
		if in.Occurrences > 1 {
			fmt.Fprintf(&b, " The suggestion repeats for %d dates.", in.Occurrences)
		}
	case KindSuggestionApproved:
		fmt.Fprintf(&b, "Your suggestion to hang out with %s (%s) was approved. You're on the calendar.", in.PupName, window)
	case KindSuggestionRejected:
		fmt.Fprintf(&b, "Your suggestion to hang out with %s (%s) was declined.", in.PupName, window)
	case KindSuggestionWithdrawn:
		fmt.Fprintf(&b, "%s withdrew their suggestion to hang out with %s (%s).", in.ActorName, in.PupName, window)
	default:
		fmt.Fprintf(&b, "Update about %s: %s.", in.PupName, window)
	}

	if c := strings.TrimSpace(in.Comment); c != "" {
		fmt.Fprintf(&b, " Note: %q", c)
	}

	return b.String()
}
