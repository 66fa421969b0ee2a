package entity

import "time"

// EnrolledUser is an identity with its stored reference image. Enrollment
// happens outside this service; the image is read-only here.
type EnrolledUser struct {
	Email          string
	ReferenceImage []byte
}

// AttendanceRecord marks one successful authentication. Records are
// append-only; the same identity checking in twice produces two rows.
type AttendanceRecord struct {
	Email     string
	Timestamp time.Time
	Emotion   string
}
