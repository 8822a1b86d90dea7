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

// serverchichi lives on Moscow time, so every timestamp we persist or
// render has to be pinned there regardless of where the process runs
func Now() time.Time {
	return time.Now().In(Location)
}
