package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

func TestFeedHealthTransitions(t *testing.T) {
	now := base
	fh := NewFeedHealth(func() time.Time { return now })

	assert.Equal(t, model.FeedOK, fh.Status())

	now = base.Add(59 * time.Second)
	assert.Equal(t, model.FeedOK, fh.Status())

	now = base.Add(60 * time.Second)
	assert.Equal(t, model.FeedHaltEntries, fh.Status())

	now = base.Add(10 * time.Minute)
	assert.Equal(t, model.FeedDanger, fh.Status())
}

func TestFeedHealthRecoversOnTick(t *testing.T) {
	now := base
	fh := NewFeedHealth(func() time.Time { return now })

	now = base.Add(11 * time.Minute)
	assert.Equal(t, model.FeedDanger, fh.Status())

	fh.RecordTick()
	assert.Equal(t, model.FeedOK, fh.Status())

	// A new silence episode degrades again.
	now = now.Add(2 * time.Minute)
	assert.Equal(t, model.FeedHaltEntries, fh.Status())
}

func TestFeedHealthDangerIsStable(t *testing.T) {
	now := base
	fh := NewFeedHealth(func() time.Time { return now })

	now = base.Add(15 * time.Minute)
	for i := 0; i < 3; i++ {
		assert.Equal(t, model.FeedDanger, fh.Status())
	}
}
