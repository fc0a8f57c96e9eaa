package summary

import (
	"fmt"
	"strings"

	"anomserver/internal/model"
)

// BuildPrompt renders the incident-report request for the detected events.
// The language model only receives timecodes, never frames.
func BuildPrompt(events []model.Event, fps float64) string {
	var b strings.Builder

	b.WriteString("You are a security analyst reviewing automated surveillance footage analysis.\n")
	b.WriteString("Motion and person-detection based anomaly scoring flagged the following abnormal intervals:\n\n")

	for i, ev := range events {
		fmt.Fprintf(&b, "%d. [%s - %s] (frames %d to %d, peak anomaly score %.2f)\n",
			i+1,
			model.Timecode(ev.StartSeconds(fps)),
			model.Timecode(ev.EndSeconds(fps)),
			ev.Start, ev.End, ev.Peak)
	}

	b.WriteString("\nWrite a short incident report in plain language. For each interval, describe what ")
	b.WriteString("the elevated motion of detected persons likely indicates and how urgently it should ")
	b.WriteString("be reviewed. Keep the report under 200 words and do not invent details that the ")
	b.WriteString("timecodes alone cannot support.")

	return b.String()
}
