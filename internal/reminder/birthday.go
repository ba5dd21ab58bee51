package reminder

import "time"

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// IsBirthday reports whether someone born on dob celebrates on day. People
// born on Feb 29 celebrate on Feb 28 in non-leap years.
func IsBirthday(dob, day time.Time) bool {
	if dob.Month() == day.Month() && dob.Day() == day.Day() {
		return true
	}
	return isLeapDay(dob) && day.Month() == time.February && day.Day() == 28 && !isLeapYear(day.Year())
}

// AgeOn returns the completed years of someone born on dob as of day.
func AgeOn(dob, day time.Time) int {
	age := day.Year() - dob.Year()

	bMonth, bDay := dob.Month(), dob.Day()
	if isLeapDay(dob) && !isLeapYear(day.Year()) {
		bDay = 28
	}
	if day.Month() < bMonth || (day.Month() == bMonth && day.Day() < bDay) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BirthdayWindow lists the month/day pairs whose owners have a birthday in
// the days starting at from. Feb 29 is added on Feb 28 of non-leap years.
func BirthdayWindow(from time.Time, days int) []MonthDay {
	var out []MonthDay
	seen := make(map[MonthDay]struct{})
	add := func(md MonthDay) {
		if _, ok := seen[md]; ok {
			return
		}
		seen[md] = struct{}{}
		out = append(out, md)
	}

	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i)
		add(MonthDay{Month: int(d.Month()), Day: d.Day()})
		if d.Month() == time.February && d.Day() == 28 && !isLeapYear(d.Year()) {
			add(MonthDay{Month: 2, Day: 29})
		}
	}
	return out
}

func isLeapDay(t time.Time) bool {
	return t.Month() == time.February && t.Day() == 29
}
