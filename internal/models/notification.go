package models

// NotificationStage identifies which point of the pipeline a message belongs to.
type NotificationStage string

const (
	StageScheduled NotificationStage = "scheduled"
	StageImminent  NotificationStage = "imminent"
)

// RecipientRole selects the template variant for a recipient.
type RecipientRole string

const (
	RecipientApplicant RecipientRole = "applicant"
	RecipientRecruiter RecipientRole = "recruiter"
)

// DeliveryResult is the outcome of one email to one recipient.
type DeliveryResult struct {
	RecipientID string        `json:"recipientId"`
	Email       string        `json:"email,omitempty"`
	Role        RecipientRole `json:"role"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
}

// Sent reports whether the message was accepted by the mailer.
func (r DeliveryResult) Sent() bool {
	return r.Err == nil
}

// DeliverySummary aggregates a batch of delivery results.
type DeliverySummary struct {
	Stage     NotificationStage `json:"stage"`
	Attempted int               `json:"attempted"`
	Sent      int               `json:"sent"`
	Failed    int               `json:"failed"`
	Results   []DeliveryResult  `json:"results,omitempty"`
}

// PartialFailure reports whether at least one recipient could not be notified.
func (s DeliverySummary) PartialFailure() bool {
	return s.Failed > 0
}

// Summarize folds results into a summary.
func Summarize(stage NotificationStage, results []DeliveryResult) DeliverySummary {
	summary := DeliverySummary{Stage: stage, Attempted: len(results), Results: results}
	for i := range results {
		if results[i].Sent() {
			summary.Sent++
			continue
		}
		summary.Failed++
		if results[i].Error == "" && results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
		}
	}
	return summary
}
