package store

import (
	"time"

	"github.com/mikey/antispam-admin/internal/core"
)

// SeedMessage ties a message fixture to its sender by index into
// DemoData.Senders; -1 means no known sender.
type SeedMessage struct {
	SenderIndex int
	Message     core.Message
}

// SeedCall ties a call fixture to its caller by index; -1 means unknown.
type SeedCall struct {
	CallerIndex int
	Call        core.Call
}

// DemoData is the demo dataset loaded when store.seed is enabled.
type DemoData struct {
	Senders  []core.Sender
	Messages []SeedMessage
	Calls    []SeedCall
}

// DemoDataset builds the demo fixtures with timestamps relative to now.
func DemoDataset() *DemoData {
	now := time.Now().UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	seen := func(d time.Duration) *time.Time {
		t := ago(d)
		return &t
	}

	senders := []core.Sender{
		{PhoneNumber: "+1555001001", SpamCount: 124, LastSeen: seen(5 * time.Minute), IsBlocked: true},
		{PhoneNumber: "+1555002002", SpamCount: 87, LastSeen: seen(time.Hour), IsBlocked: true},
		{PhoneNumber: "+1555003003", SpamCount: 58, LastSeen: seen(6 * time.Hour)},
		{PhoneNumber: "+1555004004", SpamCount: 33, LastSeen: seen(26 * time.Hour)},
		{PhoneNumber: "+1555005005", SpamCount: 22, LastSeen: seen(48 * time.Hour)},
		{PhoneNumber: "+1555006006", SpamCount: 19, LastSeen: seen(77 * time.Hour)},
		{PhoneNumber: "+1555007007", SpamCount: 15, LastSeen: seen(104 * time.Hour)},
		{PhoneNumber: "+1555008008", SpamCount: 9, LastSeen: seen(120 * time.Hour)},
	}

	message := func(senderIdx int, receiver, body, category string, age time.Duration, spam, blocked bool, confidence float64) SeedMessage {
		return SeedMessage{
			SenderIndex: senderIdx,
			Message: core.Message{
				ReceiverNumber: receiver,
				Body:           body,
				Category:       &category,
				ReceivedAt:     ago(age),
				IsSpam:         spam,
				Blocked:        blocked,
				Confidence:     &confidence,
			},
		}
	}

	messages := []SeedMessage{
		message(0, "+1555999000", "Congratulations! You've won a cruise. Click the link to claim.", "lottery", 3*time.Hour, true, true, 0.98),
		message(1, "+1555888777", "Last chance to refinance at 0.9%. Reply YES.", "financial", 28*time.Hour, true, true, 0.92),
		message(2, "+1555777666", "Two-factor code 123456. Do not share this code.", "security", time.Hour, false, false, 0.05),
		message(3, "+1555333444", "Limited time promo: upgrade to premium data today!", "promotional", 51*time.Hour, true, true, 0.82),
		message(4, "+1555666777", "Claim your complimentary gift card at reward-zone.biz", "phishing", 78*time.Hour, true, true, 0.94),
		message(5, "+1555888999", "Reminder: Your package delivery requires action. Pay customs fee now.", "logistics", 101*time.Hour, true, false, 0.77),
		message(6, "+1555000111", "Payroll processed successfully. Reply HELP for support.", "transactional", 48*time.Hour, false, false, 0.12),
		message(7, "+1555444222", "You've won a cruise. Click the link to claim.", "lottery", 32*time.Hour, true, true, 0.96),
		message(0, "+1555333666", "URGENT: Verify your bank account immediately to avoid closure.", "financial", 12*time.Hour, true, true, 0.93),
		message(-1, "+1555111222", "System alert: Scheduled maintenance tonight 11PM-3AM.", "system", 122*time.Hour, false, false, 0.1),
		message(2, "+1555777555", "Lottery payout pending. Submit bank details to receive funds.", "lottery", 7*time.Hour, true, true, 0.91),
		message(4, "+1555333777", "Reminder: Call us back to extend your car warranty.", "services", 153*time.Hour, true, false, 0.74),
		message(3, "+1555999888", "Two-factor code 654321. Do not share this code.", "security", 2*time.Hour, false, false, 0.04),
	}

	call := func(callerIdx int, callee string, age time.Duration, duration int, category string, spam, blocked bool, confidence float64) SeedCall {
		return SeedCall{
			CallerIndex: callerIdx,
			Call: core.Call{
				CalleeNumber:    callee,
				StartedAt:       ago(age),
				DurationSeconds: duration,
				Category:        &category,
				IsSpam:          spam,
				Blocked:         blocked,
				Confidence:      &confidence,
			},
		}
	}

	calls := []SeedCall{
		call(0, "+1555666555", 49*time.Hour, 120, "marketing", true, true, 0.94),
		call(1, "+1555444333", 6*time.Hour, 45, "scam", true, false, 0.88),
		call(-1, "+1555222111", 2*time.Hour, 300, "support", false, false, 0.07),
		call(2, "+1555333111", 29*time.Hour, 210, "collections", true, true, 0.9),
		call(3, "+1555888444", 76*time.Hour, 60, "telemarketing", true, true, 0.86),
		call(4, "+1555777333", 102*time.Hour, 35, "scam", true, false, 0.8),
		call(5, "+1555666444", 24*time.Hour+30*time.Minute, 15, "survey", true, false, 0.7),
		call(6, "+1555000222", 10*time.Hour, 480, "support", false, false, 0.11),
		call(7, "+1555444000", 123*time.Hour, 95, "marketing", true, true, 0.89),
		call(0, "+1555333555", 18*time.Hour, 25, "collections", true, true, 0.92),
	}

	return &DemoData{
		Senders:  senders,
		Messages: messages,
		Calls:    calls,
	}
}
