package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AnalyticsService runs the aggregation pipelines over records fetched from
// the stores. Every invocation is stateless: the matching record set is
// fetched once and aggregated in memory, so concurrent requests need no
// coordination here.
type AnalyticsService struct {
	messages MessageStore
	calls    CallStore
	logger   *zap.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(messages MessageStore, calls CallStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		messages: messages,
		calls:    calls,
		logger:   logger,
	}
}

// ListMessages returns the messages inside the optional inclusive window,
// most recent first, together with summary stats and the category rollup.
func (s *AnalyticsService) ListMessages(ctx context.Context, start, end *time.Time) (*SmsListResponse, error) {
	messages, err := s.messages.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := messageView.aggregate(messages)
	groups := messageView.rollupByCategory(messages)

	categories := make([]MessageCategorySummary, 0, len(groups))
	for _, group := range groups {
		categories = append(categories, MessageCategorySummary{
			Category:       group.Category,
			TotalMessages:  group.Total,
			UniqueSenders:  group.UniqueOriginators,
			Blocked:        group.Blocked,
			SamplePreview:  group.SamplePreview,
			UniqueMessages: group.DistinctTexts,
		})
	}

	s.logger.Debug("Aggregated message listing",
		zap.Int("total", stats.Total),
		zap.Int("categories", len(categories)))

	return &SmsListResponse{
		Stats:          messageStatsFrom(stats),
		Categories:     categories,
		RecentMessages: messages,
	}, nil
}

// ListCalls returns the calls inside the optional inclusive window, most
// recent first, together with summary stats and the category rollup.
func (s *AnalyticsService) ListCalls(ctx context.Context, start, end *time.Time) (*CallListResponse, error) {
	calls, err := s.calls.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := callView.aggregate(calls)
	groups := callView.rollupByCategory(calls)

	categories := make([]CallCategorySummary, 0, len(groups))
	for _, group := range groups {
		categories = append(categories, CallCategorySummary{
			Category:      group.Category,
			TotalCalls:    group.Total,
			UniqueCallers: group.UniqueOriginators,
			Blocked:       group.Blocked,
			SamplePreview: group.SamplePreview,
		})
	}

	s.logger.Debug("Aggregated call listing",
		zap.Int("total", stats.Total),
		zap.Int("categories", len(categories)))

	return &CallListResponse{
		Stats:       callStatsFrom(stats),
		Categories:  categories,
		RecentCalls: calls,
	}, nil
}

// DashboardSummary runs both pipelines symmetrically over the same window
// and combines them with the cross-entity derived metrics. It always
// returns a complete report; an empty window yields zeroed fields.
func (s *AnalyticsService) DashboardSummary(ctx context.Context, start, end *time.Time) (*DashboardSummary, error) {
	messages, err := s.messages.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	calls, err := s.calls.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	smsStats := messageView.aggregate(messages)
	callStats := callView.aggregate(calls)

	totalEvents := smsStats.Total + callStats.Total
	totalBlocked := smsStats.Blocked + callStats.Blocked
	overallBlockRate := 0.0
	if totalEvents > 0 {
		overallBlockRate = round3(float64(totalBlocked) / float64(totalEvents))
	}

	// Entity types are weighted equally: the average is taken over the two
	// per-entity means, not over all records.
	confidences := make([]float64, 0, 2)
	if mean, ok := messageView.meanConfidence(messages); ok {
		confidences = append(confidences, mean)
	}
	if mean, ok := callView.meanConfidence(calls); ok {
		confidences = append(confidences, mean)
	}
	avgConfidence := 0.0
	if len(confidences) > 0 {
		sum := 0.0
		for _, mean := range confidences {
			sum += mean
		}
		avgConfidence = round3(sum / float64(len(confidences)))
	}

	timeframe := "all_time"
	if start != nil || end != nil {
		timeframe = "custom"
	}

	summary := &DashboardSummary{
		Timeframe:        timeframe,
		Sms:              messageStatsFrom(smsStats),
		Calls:            callStatsFrom(callStats),
		OverallBlockRate: overallBlockRate,
		AvgConfidence:    avgConfidence,
		SmsUniqueSpamMessages: messageView.distinctTexts(messages,
			func(m Message) bool { return m.IsSpam }),
		SmsUniqueBlockedMessages: messageView.distinctTexts(messages,
			func(m Message) bool { return m.Blocked }),
		SmsDaily: messageView.dailySeries(messages),
		CallsUniqueSpamCalls: callView.distinctOriginators(calls,
			func(c Call) bool { return c.IsSpam }),
		CallsUniqueBlockedCalls: callView.distinctOriginators(calls,
			func(c Call) bool { return c.Blocked }),
		CallsDaily: callView.dailySeries(calls),
	}

	s.logger.Debug("Composed dashboard summary",
		zap.String("timeframe", timeframe),
		zap.Int("total_events", totalEvents),
		zap.Int("total_blocked", totalBlocked))

	return summary, nil
}

func messageStatsFrom(stats eventStats) MessageStats {
	return MessageStats{
		TotalMessages:   stats.Total,
		BlockedMessages: stats.Blocked,
		UniqueSenders:   stats.UniqueOriginators,
		SpamPercentage:  stats.BlockRate,
		TopSenderNumber: stats.TopOriginator,
	}
}

func callStatsFrom(stats eventStats) CallStats {
	return CallStats{
		TotalCalls:      stats.Total,
		BlockedCalls:    stats.Blocked,
		UniqueCallers:   stats.UniqueOriginators,
		SpamPercentage:  stats.BlockRate,
		TopCallerNumber: stats.TopOriginator,
	}
}

// SenderService owns the sender block/unblock mutation.
type SenderService struct {
	senders SenderStore
	logger  *zap.Logger
}

// NewSenderService creates a new sender service.
func NewSenderService(senders SenderStore, logger *zap.Logger) *SenderService {
	return &SenderService{
		senders: senders,
		logger:  logger,
	}
}

// ListSenders returns all known senders.
func (s *SenderService) ListSenders(ctx context.Context) ([]Sender, error) {
	return s.senders.List(ctx)
}

// BlockSender marks the sender as blocked and returns the updated record.
func (s *SenderService) BlockSender(ctx context.Context, id int64) (*Sender, error) {
	sender, err := s.senders.SetBlocked(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Sender blocked",
		zap.Int64("sender_id", id),
		zap.String("phone_number", sender.PhoneNumber))
	return sender, nil
}

// UnblockSender clears the blocked flag and returns the updated record.
func (s *SenderService) UnblockSender(ctx context.Context, id int64) (*Sender, error) {
	sender, err := s.senders.SetBlocked(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Sender unblocked",
		zap.Int64("sender_id", id),
		zap.String("phone_number", sender.PhoneNumber))
	return sender, nil
}

// ClassificationService proxies text classification to the configured LLM
// provider. Provider failures of any kind are normalized into
// ErrClassifierUnavailable; a classification is either complete or absent.
type ClassificationService struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewClassificationService creates a new classification service.
func NewClassificationService(classifier Classifier, logger *zap.Logger) *ClassificationService {
	return &ClassificationService{
		classifier: classifier,
		logger:     logger,
	}
}

// ClassifyText classifies a single text.
func (s *ClassificationService) ClassifyText(ctx context.Context, text string) (*Classification, error) {
	result, err := s.classifier.ClassifyText(ctx, text)
	if err != nil {
		s.logger.Error("Classification failed", zap.Error(err))
		return nil, ErrClassifierUnavailable
	}
	s.logger.Info("Text classified",
		zap.Bool("is_spam", result.IsSpam),
		zap.Float64("confidence", result.Confidence),
		zap.String("category", result.Category),
		zap.String("model", result.ModelUsed))
	return result, nil
}
