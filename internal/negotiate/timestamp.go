package negotiate

import (
	"fmt"
	"time"
)

// FormatTimestamp renders t in local time as YYYY_M_D_H_M_S_mmm. Only the year is fixed width;
// the other parts are not zero padded, which is what the access-token endpoint expects.
func FormatTimestamp(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%d_%d_%d_%d_%d_%d_%d",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Millisecond),
	)
}
