package scheduler

import "time"

// timeUTC anchors every cron-scheduled sweep to UTC regardless of the
// host machine's local timezone, since §4.6/§4.7's fire times are
// specified in UTC.
var timeUTC = time.UTC
