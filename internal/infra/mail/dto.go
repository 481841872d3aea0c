package mail

import "time"

type CallOutcomeEmailData struct {
	LeadID        string
	Name          string
	Phone         string
	Outcome       string
	VapiCallID    string
	Transcription string
	OccurredAt    time.Time
}
