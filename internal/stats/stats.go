// Package stats turns a notification delivery log into the derived views of
// the analytics dashboard. Every function is pure: it reads the slice it is
// given, allocates fresh output and keeps no state between calls, so callers
// may run views concurrently on the same snapshot.
package stats

import (
	"fmt"
	"sort"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

// Overview holds the headline counters.
type Overview struct {
	Total          int    `json:"total"`
	DeliveredCount int    `json:"deliveredCount"`
	FailedCount    int    `json:"failedCount"`
	PendingCount   int    `json:"pendingCount"`
	DeliveryRate   string `json:"deliveryRate"`
	FailureRate    string `json:"failureRate"`
	AvgAttempts    string `json:"avgAttempts"`
}

// StatusShare is one slice of the status distribution.
type StatusShare struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage string `json:"percentage"`
}

// GroupMetric is the per-key breakdown shared by the channel and provider
// views. Total counts every record in the group, including statuses other
// than delivered and failed.
type GroupMetric struct {
	Key          string `json:"key"`
	Total        int    `json:"total"`
	Delivered    int    `json:"delivered"`
	Failed       int    `json:"failed"`
	DeliveryRate string `json:"deliveryRate"`
	AvgAttempts  string `json:"avgAttempts"`
}

// ProviderMetric is a provider breakdown with its delivery tier.
type ProviderMetric struct {
	GroupMetric
	Tier Tier `json:"tier"`
}

// RetryBucket counts the records that took exactly Attempts tries.
type RetryBucket struct {
	Attempts   int    `json:"attempts"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// Dashboard bundles all five views computed over one snapshot.
type Dashboard struct {
	Overview           Overview         `json:"overview"`
	StatusDistribution []StatusShare    `json:"statusDistribution"`
	Channels           []GroupMetric    `json:"channels"`
	Providers          []ProviderMetric `json:"providers"`
	Retries            []RetryBucket    `json:"retries"`
}

// ComputeOverview counts the snapshot and derives the headline rates.
func ComputeOverview(records []domain.NotificationRecord) Overview {
	var acc accumulator
	for i := range records {
		acc.add(&records[i])
	}

	return Overview{
		Total:          acc.total,
		DeliveredCount: acc.delivered,
		FailedCount:    acc.failed,
		PendingCount:   acc.pending,
		DeliveryRate:   percent(acc.delivered, acc.total),
		FailureRate:    percent(acc.failed, acc.total),
		AvgAttempts:    average(acc.attempts, acc.total),
	}
}

// ComputeStatusDistribution groups by the literal status label. Groups come
// out in order of first occurrence in records.
func ComputeStatusDistribution(records []domain.NotificationRecord) []StatusShare {
	groups := groupRecords(records, func(n *domain.NotificationRecord) string {
		return n.Status.String()
	})

	out := make([]StatusShare, 0, len(groups.keys))
	for i, key := range groups.keys {
		count := groups.accs[i].total
		out = append(out, StatusShare{
			Name:       key,
			Value:      count,
			Percentage: percent(count, len(records)),
		})
	}
	return out
}

// ComputeChannelPerformance groups by channel in order of first occurrence.
func ComputeChannelPerformance(records []domain.NotificationRecord) []GroupMetric {
	groups := groupRecords(records, func(n *domain.NotificationRecord) string {
		return n.Channel
	})

	out := make([]GroupMetric, 0, len(groups.keys))
	for i, key := range groups.keys {
		out = append(out, groupMetric(key, groups.accs[i]))
	}
	return out
}

// ComputeProviderComparison groups by provider in order of first occurrence
// and classifies each provider's delivery rate.
func ComputeProviderComparison(records []domain.NotificationRecord) []ProviderMetric {
	groups := groupRecords(records, func(n *domain.NotificationRecord) string {
		return n.Provider
	})

	out := make([]ProviderMetric, 0, len(groups.keys))
	for i, key := range groups.keys {
		acc := groups.accs[i]
		rate := round1(float64(acc.delivered) / float64(acc.total) * 100)
		out = append(out, ProviderMetric{
			GroupMetric: groupMetric(key, acc),
			Tier:        ClassifyRate(rate),
		})
	}
	return out
}

// ComputeRetryDistribution groups by exact attempt count, ascending.
func ComputeRetryDistribution(records []domain.NotificationRecord) []RetryBucket {
	counts := make(map[int]int)
	for i := range records {
		counts[records[i].Attempts]++
	}

	attempts := make([]int, 0, len(counts))
	for a := range counts {
		attempts = append(attempts, a)
	}
	sort.Ints(attempts)

	out := make([]RetryBucket, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, RetryBucket{
			Attempts:   a,
			Label:      attemptLabel(a),
			Count:      counts[a],
			Percentage: percent(counts[a], len(records)),
		})
	}
	return out
}

// Compute runs every view over records.
func Compute(records []domain.NotificationRecord) Dashboard {
	return Dashboard{
		Overview:           ComputeOverview(records),
		StatusDistribution: ComputeStatusDistribution(records),
		Channels:           ComputeChannelPerformance(records),
		Providers:          ComputeProviderComparison(records),
		Retries:            ComputeRetryDistribution(records),
	}
}

func groupMetric(key string, acc accumulator) GroupMetric {
	return GroupMetric{
		Key:          key,
		Total:        acc.total,
		Delivered:    acc.delivered,
		Failed:       acc.failed,
		DeliveryRate: percent(acc.delivered, acc.total),
		AvgAttempts:  average(acc.attempts, acc.total),
	}
}

func attemptLabel(attempts int) string {
	if attempts == 1 {
		return "1 attempt"
	}
	return fmt.Sprintf("%d attempts", attempts)
}
