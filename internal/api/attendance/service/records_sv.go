package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	contextPkg "FaceAttendance/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ListRecords returns the attendance log for an identity, newest first. An
// identity with no check-ins yields an empty list, not an error.
func (s *attendanceServiceImpl) ListRecords(ctx context.Context, email string) (attendance.RecordListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return attendance.RecordListResponse{}, err
	}

	records, err := repo.Attendance.ListByEmail(ctx, email)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	res := attendance.RecordListResponse{
		Data: make([]attendance.RecordResponse, 0, len(records)),
	}

	for _, record := range records {
		res.Data = append(res.Data, attendance.RecordResponse{
			Email:     record.Email,
			Timestamp: record.Timestamp,
			Emotion:   record.Emotion,
		})
	}

	return res, nil
}
