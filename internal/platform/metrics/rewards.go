package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RewardMetrics collects reward pipeline metrics. A nil *RewardMetrics is a valid no-op recorder.
type RewardMetrics struct {
	processed      prometheus.Counter
	failures       *prometheus.CounterVec
	benefitTotal   prometheus.Counter
	roundingAdjust prometheus.Counter
	duration       prometheus.Histogram
}

var (
	rewardsOnce     sync.Once
	rewardsRegistry *RewardMetrics
)

// Rewards returns the process-wide RewardMetrics registered on the default registry
func Rewards() *RewardMetrics {
	rewardsOnce.Do(func() {
		rewardsRegistry = NewRewardMetrics(prometheus.DefaultRegisterer)
	})
	return rewardsRegistry
}

// NewRewardMetrics creates RewardMetrics and registers them on reg
func NewRewardMetrics(reg prometheus.Registerer) *RewardMetrics {
	m := &RewardMetrics{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardnetwork_rewards_processed_total",
			Help: "Count of dinings rewarded and confirmed.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewardnetwork_reward_failures_total",
			Help: "Count of failed reward operations by pipeline step.",
		}, []string{"step"}),
		benefitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardnetwork_benefit_amount_total",
			Help: "Sum of benefit amounts contributed to accounts.",
		}),
		roundingAdjust: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardnetwork_rounding_adjustments_total",
			Help: "Count of contributions where the last beneficiary absorbed a rounding remainder.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rewardnetwork_reward_duration_seconds",
			Help:    "Latency of reward operations.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.processed, m.failures, m.benefitTotal, m.roundingAdjust, m.duration)
	return m
}

// ObserveReward records a confirmed reward of the given benefit amount
func (m *RewardMetrics) ObserveReward(benefit float64, roundingAdjusted bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.processed.Inc()
	m.benefitTotal.Add(benefit)
	if roundingAdjusted {
		m.roundingAdjust.Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}

// ObserveFailure records a reward that failed at step
func (m *RewardMetrics) ObserveFailure(step string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if step == "" {
		step = "unknown"
	}
	m.failures.WithLabelValues(step).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Processed exposes the processed counter for tests and dashboards
func (m *RewardMetrics) Processed() prometheus.Counter { return m.processed }

// Failures exposes the failure counter vector
func (m *RewardMetrics) Failures() *prometheus.CounterVec { return m.failures }

// BenefitTotal exposes the benefit sum counter
func (m *RewardMetrics) BenefitTotal() prometheus.Counter { return m.benefitTotal }

// RoundingAdjustments exposes the rounding adjustment counter
func (m *RewardMetrics) RoundingAdjustments() prometheus.Counter { return m.roundingAdjust }
