package main

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	// julianDayUnixEpoch is the Julian Day of 1970-01-01T00:00:00Z.
	julianDayUnixEpoch = 2440587.5
	secondsPerDay      = 86400.0

	timestampLayout = "2006-01-02 15:04:05"
)

// julianDayToTime converts a Julian Day to a UTC instant rounded to the second.
// Dates are proleptic Gregorian.
func julianDayToTime(jd float64) time.Time {
	secs := math.Round((jd - julianDayUnixEpoch) * secondsPerDay)
	return time.Unix(int64(secs), 0).UTC()
}

func timeToJulianDay(t time.Time) float64 {
	return float64(t.Unix())/secondsPerDay + julianDayUnixEpoch
}

// localTimestamp renders the clock's current instant as local civil time,
// e.g. "2024-03-01 21:30:00".
func localTimestamp(c Clock) string {
	jd := c.JD()
	return julianDayToTime(jd + c.UTCOffset(jd)/24).Format(timestampLayout)
}

// parseLocalTimestamp is the inverse of localTimestamp.
func parseLocalTimestamp(s string, c Clock) (float64, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	local := timeToJulianDay(t)
	return local - c.UTCOffset(local)/24, nil
}

// rectToSphe converts a rectangular position to longitude/latitude in radians.
func rectToSphe(v Vec3) (lng, lat float64) {
	r := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if r == 0 {
		return 0, 0
	}
	return math.Atan2(v[1], v[0]), math.Asin(v[2] / r)
}

// radToHmsStr formats a right ascension as "5h55m10.3s".
func radToHmsStr(angle float64) string {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	const tenthsPerDay = 24 * 36000
	tenths := int64(math.Round(angle*12/math.Pi*36000)) % tenthsPerDay
	h := tenths / 36000
	m := (tenths % 36000) / 600
	s := float64(tenths%600) / 10
	return fmt.Sprintf("%dh%02dm%04.1fs", h, m, s)
}

// radToDmsStr formats a declination as +7°24'25.4".
func radToDmsStr(angle float64) string {
	sign := "+"
	if angle < 0 {
		sign = "-"
		angle = -angle
	}
	tenths := int64(math.Round(angle * 180 / math.Pi * 36000))
	d := tenths / 36000
	m := (tenths % 36000) / 600
	s := float64(tenths%600) / 10
	return fmt.Sprintf("%s%d°%02d'%04.1f\"", sign, d, m, s)
}

// formatNumber renders a float with at most six significant digits and no
// trailing zeros: 48.85 -> "48.85", 2 -> "2".
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
