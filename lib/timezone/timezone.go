package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// force timezone to be the portal's timezone because our host
// may end up somewhere else entirely, which would shift the day
// boundary when manipulating dates based on <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}

// DayWithOffset returns midnight of the day `offset` days away from `now`.
func DayWithOffset(now time.Time, offset int) time.Time {
	d := now.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Location)
}
