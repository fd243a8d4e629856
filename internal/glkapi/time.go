package glkapi

import "time"

// GlkTime is the (high-seconds, low-seconds, microseconds) triple Glk uses
// for timestamps (§4.7).
type GlkTime struct {
	High int32
	Low  uint32
	Microsec int32
}

// GlkDate is a broken-down calendar date/time, normalized so every field
// is in its canonical range (§4.7).
type GlkDate struct {
	Year                     int32
	Month                    int32 // 1-12
	Day                      int32
	Weekday                  int32 // 0 = Sunday
	Hour, Minute, Second     int32
	Microsec                 int32
}

// TimeFromUnix builds a GlkTime from a Go time.
func TimeFromUnix(t time.Time) GlkTime {
	sec := t.Unix()
	return GlkTime{
		High:     int32(sec >> 32),
		Low:      uint32(sec & 0xFFFFFFFF),
		Microsec: int32(t.Nanosecond() / 1000),
	}
}

// ToUnix reconstructs the seconds-since-epoch value a GlkTime encodes.
func (t GlkTime) ToUnix() int64 {
	return int64(t.High)<<32 | int64(t.Low)
}

// SimpleTime divides seconds-since-epoch by factor, rounding toward
// negative infinity, per §4.7.
func (t GlkTime) SimpleTime(factor int32) int32 {
	sec := t.ToUnix()
	f := int64(factor)
	q := sec / f
	if sec%f != 0 && (sec < 0) != (f < 0) {
		q--
	}
	return int32(q)
}

// DateFromTime converts a GlkTime (UTC or in the given location) to a
// broken-down GlkDate.
func DateFromTime(t GlkTime, loc *time.Location) GlkDate {
	gt := time.Unix(t.ToUnix(), int64(t.Microsec)*1000).In(loc)
	return GlkDate{
		Year:     int32(gt.Year()),
		Month:    int32(gt.Month()),
		Day:      int32(gt.Day()),
		Weekday:  int32(gt.Weekday()),
		Hour:     int32(gt.Hour()),
		Minute:   int32(gt.Minute()),
		Second:   int32(gt.Second()),
		Microsec: t.Microsec,
	}
}

// TimeFromDate normalizes an arbitrary (possibly out-of-range, e.g. a
// 13th month) GlkDate into a GlkTime, per §4.7's "rolls over" rule.
func TimeFromDate(d GlkDate, loc *time.Location) GlkTime {
	gt := time.Date(int(d.Year), time.Month(d.Month), int(d.Day), int(d.Hour), int(d.Minute), int(d.Second), int(d.Microsec)*1000, loc)
	return TimeFromUnix(gt)
}
