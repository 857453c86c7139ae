package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayWithOffset(t *testing.T) {
	cases := []struct {
		now    time.Time
		offset int
		expect time.Time
	}{
		{
			now:    time.Date(2024, time.January, 1, 15, 30, 0, 0, Location),
			offset: 0,
			expect: time.Date(2024, time.January, 1, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, time.January, 1, 23, 59, 0, 0, Location),
			offset: 1,
			expect: time.Date(2024, time.January, 2, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, time.February, 28, 8, 0, 0, 0, Location),
			offset: 2,
			expect: time.Date(2024, time.March, 1, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, time.December, 31, 7, 0, 0, 0, Location),
			offset: 1,
			expect: time.Date(2025, time.January, 1, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, DayWithOffset(test.now, test.offset))
	}
}
