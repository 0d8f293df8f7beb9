package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(0, 10))
	assert.Equal(t, 50, ProgressPercent(5, 10))
	assert.Equal(t, 100, ProgressPercent(10, 10))
	assert.Equal(t, 67, ProgressPercent(2, 3), "rounds to nearest, not down")
	assert.Equal(t, 17, ProgressPercent(1, 6))
	assert.Equal(t, 33, ProgressPercent(1, 3))
	assert.Equal(t, 100, ProgressPercent(25, 10), "clamped at 100")
	assert.Equal(t, 100, ProgressPercent(0, 0), "zero target means nothing left to do")
	assert.Equal(t, 100, ProgressPercent(3, -1))
	assert.Equal(t, 0, ProgressPercent(-5, 10), "negative progress clamps to 0")
}

func TestProgressPercentMonotonic(t *testing.T) {
	prev := 0
	for current := 0; current <= 20; current++ {
		pct := ProgressPercent(current, 7)
		assert.GreaterOrEqual(t, pct, prev)
		assert.LessOrEqual(t, pct, 100)
		prev = pct
	}
}

func TestCanRepeat(t *testing.T) {
	oneTime := &Quest{Category: CategoryOneTime}
	assert.True(t, oneTime.CanRepeat(0))
	assert.False(t, oneTime.CanRepeat(1))
	assert.False(t, oneTime.CanRepeat(5))

	capped := &Quest{Category: CategorySpecial, MaxCompletions: 3}
	assert.True(t, capped.CanRepeat(0))
	assert.True(t, capped.CanRepeat(2))
	assert.False(t, capped.CanRepeat(3))

	unlimited := &Quest{Category: CategoryDaily}
	assert.True(t, unlimited.CanRepeat(0))
	assert.True(t, unlimited.CanRepeat(1000))
}

func TestInTimeWindow(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC) // Wednesday

	daily := &Quest{Category: CategoryDaily}
	assert.True(t, daily.InTimeWindow(nil, now), "never completed is always in-window")

	earlierToday := time.Date(2025, 6, 11, 3, 0, 0, 0, time.UTC)
	assert.False(t, daily.InTimeWindow(&earlierToday, now))

	yesterday := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	assert.True(t, daily.InTimeWindow(&yesterday, now))

	weekly := &Quest{Category: CategoryWeekly}
	monday := time.Date(2025, 6, 9, 1, 0, 0, 0, time.UTC)
	assert.False(t, weekly.InTimeWindow(&monday, now), "completed this ISO week")
	lastSunday := time.Date(2025, 6, 8, 22, 0, 0, 0, time.UTC)
	assert.True(t, weekly.InTimeWindow(&lastSunday, now))

	monthly := &Quest{Category: CategoryMonthly}
	firstOfMonth := time.Date(2025, 6, 1, 0, 0, 1, 0, time.UTC)
	assert.False(t, monthly.InTimeWindow(&firstOfMonth, now))
	lastMonth := time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)
	assert.True(t, monthly.InTimeWindow(&lastMonth, now))

	oneTime := &Quest{Category: CategoryOneTime}
	longAgo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, oneTime.InTimeWindow(&longAgo, now), "non-periodic categories are always in-window")
}

func TestStartOfWeek(t *testing.T) {
	// Sunday belongs to the week starting the previous Monday
	sunday := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(monday))

	wednesday := time.Date(2025, 6, 11, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(wednesday))
}

func TestRequirementsTimeframeDefaults(t *testing.T) {
	daily := &Quest{Category: CategoryDaily, RequirementType: RequirementVoteCount, Target: 3}
	assert.Equal(t, TimeframeDay, daily.Requirements().Timeframe)

	weekly := &Quest{Category: CategoryWeekly, RequirementType: RequirementVoteCount, Target: 5}
	assert.Equal(t, TimeframeWeek, weekly.Requirements().Timeframe)

	oneTime := &Quest{Category: CategoryOneTime, RequirementType: RequirementPollCount, Target: 1}
	assert.Equal(t, TimeframeAllTime, oneTime.Requirements().Timeframe)

	explicit := &Quest{Category: CategorySpecial, Timeframe: TimeframeMonth, RequirementType: RequirementVoteCount, Target: 10}
	assert.Equal(t, TimeframeMonth, explicit.Requirements().Timeframe)
}

func TestRequirementsPeriodScoped(t *testing.T) {
	assert.True(t, QuestRequirements{Timeframe: TimeframeDay}.PeriodScoped())
	assert.True(t, QuestRequirements{Timeframe: TimeframeWeek}.PeriodScoped())
	assert.True(t, QuestRequirements{Timeframe: TimeframeMonth}.PeriodScoped())
	assert.False(t, QuestRequirements{Timeframe: TimeframeAllTime}.PeriodScoped())
	assert.False(t, QuestRequirements{}.PeriodScoped())
}
