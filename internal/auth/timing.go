package auth

import (
	"crypto/rand"
	"math/big"
	"time"
)

// TimingConfig sets the floor for failed-login latency.
type TimingConfig struct {
	BaseDelay   time.Duration
	RandomDelay time.Duration // upper bound of extra jitter
}

// TimingDelay pads failed logins so unknown usernames, wrong passwords and
// locked accounts answer in similar time.
type TimingDelay struct {
	config TimingConfig
	sleep  func(time.Duration)
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config, sleep: time.Sleep}
}

// WaitFrom sleeps until at least base+jitter has passed since start.
func (td *TimingDelay) WaitFrom(start time.Time) {
	if td == nil {
		return
	}
	target := td.config.BaseDelay + jitter(td.config.RandomDelay)
	if remaining := target - time.Since(start); remaining > 0 {
		td.sleep(remaining)
	}
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
