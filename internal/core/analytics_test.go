package core

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func testMessage(senderID int64, number string, received time.Time, blocked bool) Message {
	return Message{
		SenderID:     int64Ptr(senderID),
		SenderNumber: strPtr(number),
		Body:         "hello",
		ReceivedAt:   received,
		Blocked:      blocked,
	}
}

func TestFilterByRange(t *testing.T) {
	messages := []Message{
		{ReceivedAt: at(1, 10)},
		{ReceivedAt: at(2, 10)},
		{ReceivedAt: at(3, 10)},
	}

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  int
	}{
		{"no bounds returns everything", nil, nil, 3},
		{"lower bound only", timePtr(at(2, 0)), nil, 2},
		{"upper bound only", nil, timePtr(at(2, 23)), 2},
		{"both bounds", timePtr(at(2, 0)), timePtr(at(2, 23)), 1},
		{"bounds are inclusive", timePtr(at(1, 10)), timePtr(at(3, 10)), 3},
		{"empty window", timePtr(at(4, 0)), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := messageView.filterByRange(messages, tt.start, tt.end)
			assert.Len(t, filtered, tt.want)
			for _, m := range filtered {
				if tt.start != nil {
					assert.False(t, m.ReceivedAt.Before(*tt.start))
				}
				if tt.end != nil {
					assert.False(t, m.ReceivedAt.After(*tt.end))
				}
			}
		})
	}
}

func TestAggregateScenario(t *testing.T) {
	// 3 messages from A (2 blocked), 2 from B (none blocked).
	messages := []Message{
		testMessage(1, "+1555001001", at(1, 9), true),
		testMessage(1, "+1555001001", at(1, 10), true),
		testMessage(1, "+1555001001", at(1, 11), false),
		testMessage(2, "+1555002002", at(2, 9), false),
		testMessage(2, "+1555002002", at(2, 10), false),
	}

	stats := messageView.aggregate(messages)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Blocked)
	assert.Equal(t, 2, stats.UniqueOriginators)
	assert.Equal(t, 0.4, stats.BlockRate)
	require.NotNil(t, stats.TopOriginator)
	assert.Equal(t, "+1555001001", *stats.TopOriginator)
}

func TestAggregateEmpty(t *testing.T) {
	stats := messageView.aggregate(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Blocked)
	assert.Equal(t, 0, stats.UniqueOriginators)
	assert.Equal(t, 0.0, stats.BlockRate)
	assert.Nil(t, stats.TopOriginator)
}

func TestAggregateUnresolvedOriginator(t *testing.T) {
	calls := []Call{
		{StartedAt: at(1, 9)}, // no caller reference
		{StartedAt: at(1, 10), CallerID: int64Ptr(7), CallerNumber: strPtr("+1555007007")},
	}

	stats := callView.aggregate(calls)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.UniqueOriginators)
	require.NotNil(t, stats.TopOriginator)
	assert.Equal(t, "+1555007007", *stats.TopOriginator)

	// With no resolved originators at all there is no top originator.
	stats = callView.aggregate(calls[:1])
	assert.Equal(t, 0, stats.UniqueOriginators)
	assert.Nil(t, stats.TopOriginator)
}

func TestAggregateBlockRateBounds(t *testing.T) {
	messages := []Message{
		{ReceivedAt: at(1, 9), Blocked: true},
		{ReceivedAt: at(1, 10), Blocked: true},
		{ReceivedAt: at(1, 11), Blocked: true},
	}
	stats := messageView.aggregate(messages)
	assert.Equal(t, 1.0, stats.BlockRate)

	stats = messageView.aggregate(messages[:0])
	assert.Equal(t, 0.0, stats.BlockRate)
}

func TestRollupByCategory(t *testing.T) {
	messages := []Message{
		{Body: "win a prize", Category: strPtr("lottery"), ReceivedAt: at(1, 9), Blocked: true, SenderID: int64Ptr(1)},
		{Body: "win a prize ", Category: strPtr("lottery"), ReceivedAt: at(1, 10), SenderID: int64Ptr(2)},
		{Body: "another prize", Category: strPtr("lottery"), ReceivedAt: at(1, 11), SenderID: int64Ptr(1)},
		{Body: "your 2fa code", Category: strPtr("security"), ReceivedAt: at(2, 9)},
		{Body: "no label here", ReceivedAt: at(2, 10)},
	}

	groups := messageView.rollupByCategory(messages)

	require.Len(t, groups, 3)

	// Sorted by volume descending.
	assert.Equal(t, "lottery", groups[0].Category)
	assert.Equal(t, 3, groups[0].Total)
	assert.Equal(t, 2, groups[0].UniqueOriginators)
	assert.Equal(t, 1, groups[0].Blocked)
	assert.Equal(t, "win a prize", groups[0].SamplePreview)
	// "win a prize" and "win a prize " collapse after trimming.
	assert.Equal(t, 2, groups[0].DistinctTexts)

	// Absent category lands in the uncategorised bucket.
	labels := []string{groups[0].Category, groups[1].Category, groups[2].Category}
	assert.Contains(t, labels, uncategorised)

	// Every record appears in exactly one bucket.
	total := 0
	for _, group := range groups {
		total += group.Total
	}
	assert.Equal(t, len(messages), total)
}

func TestRollupCallPreview(t *testing.T) {
	calls := []Call{
		{
			CallerID:     int64Ptr(1),
			CallerNumber: strPtr("+1555001001"),
			CalleeNumber: "+1555666555",
			Category:     strPtr("marketing"),
			StartedAt:    at(1, 9),
		},
		{
			CalleeNumber: "+1555222111",
			Category:     strPtr("support"),
			StartedAt:    at(1, 10),
		},
	}

	groups := callView.rollupByCategory(calls)
	require.Len(t, groups, 2)

	previews := map[string]string{}
	for _, group := range groups {
		previews[group.Category] = group.SamplePreview
	}
	assert.Equal(t, "Caller +1555001001 → +1555666555", previews["marketing"])
	assert.Equal(t, "Caller Unknown → +1555222111", previews["support"])
}

func TestDailySeries(t *testing.T) {
	// Two calendar dates: 3 records (1 blocked), then 2 records (2 blocked).
	messages := []Message{
		{ReceivedAt: at(2, 9), Blocked: true},
		{ReceivedAt: at(2, 23), Blocked: true},
		{ReceivedAt: at(1, 9), Blocked: true},
		{ReceivedAt: at(1, 15)},
		{ReceivedAt: at(1, 20)},
	}

	series := messageView.dailySeries(messages)

	require.Len(t, series, 2)
	assert.Equal(t, DailyStat{Date: "2025-03-01", Detected: 3, Blocked: 1}, series[0])
	assert.Equal(t, DailyStat{Date: "2025-03-02", Detected: 2, Blocked: 2}, series[1])

	// Sum of detected equals the input size; dates strictly increasing.
	detected := 0
	for i, stat := range series {
		detected += stat.Detected
		if i > 0 {
			assert.Greater(t, stat.Date, series[i-1].Date)
		}
	}
	assert.Equal(t, len(messages), detected)
}

func TestDailySeriesEmpty(t *testing.T) {
	assert.Empty(t, messageView.dailySeries(nil))
}

func TestMeanConfidence(t *testing.T) {
	messages := []Message{
		{ReceivedAt: at(1, 9), Confidence: floatPtr(0.4)},
		{ReceivedAt: at(1, 10), Confidence: floatPtr(0.6)},
		{ReceivedAt: at(1, 11)}, // no confidence, excluded
	}

	mean, ok := messageView.meanConfidence(messages)
	require.True(t, ok)
	assert.InDelta(t, 0.5, mean, 1e-9)

	_, ok = messageView.meanConfidence(nil)
	assert.False(t, ok)
}

func TestAggregateIdempotent(t *testing.T) {
	messages := []Message{
		testMessage(1, "+1555001001", at(1, 9), true),
		testMessage(2, "+1555002002", at(2, 9), false),
	}

	first := messageView.aggregate(messages)
	second := messageView.aggregate(messages)
	assert.Equal(t, first, second)

	assert.Equal(t, messageView.rollupByCategory(messages), messageView.rollupByCategory(messages))
	assert.Equal(t, messageView.dailySeries(messages), messageView.dailySeries(messages))
}

func TestPreviewTruncation(t *testing.T) {
	long := strings.Repeat("a", 300)
	preview := messageView.preview(Message{Body: long})
	assert.Equal(t, strings.Repeat("a", previewMaxRunes), preview)

	short := messageView.preview(Message{Body: "short body"})
	assert.Equal(t, "short body", short)

	// The limit counts characters, not bytes: a multi-byte body keeps the
	// same number of characters as an ASCII one.
	runes := strings.Repeat("é", 150)
	preview = messageView.preview(Message{Body: runes})
	assert.Equal(t, strings.Repeat("é", previewMaxRunes), preview)
	assert.Equal(t, previewMaxRunes, utf8.RuneCountInString(preview))
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.333, round3(1.0/3.0))
	assert.Equal(t, 0.667, round3(2.0/3.0))
	assert.Equal(t, 0.4, round3(0.4))
	assert.Equal(t, 0.0, round3(0.0))
}
