package ride

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := Day(time.Date(2020, 4, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), got)
	assert.True(t, got.Equal(Day(time.Date(2020, 4, 1, 0, 1, 0, 0, time.UTC))))
}

func TestParseRiderClass(t *testing.T) {
	for in, want := range map[string]RiderClass{"member": Member, " Casual ": Casual, "1": Member, "0": Casual} {
		got, err := ParseRiderClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRiderClass("guest")
	assert.Error(t, err)
	assert.Equal(t, "member", Member.String())
	assert.Equal(t, Casual, Trip{IsMember: false}.Class())
}
