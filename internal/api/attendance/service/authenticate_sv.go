package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/faceapi"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Authenticate runs the full decision pipeline for one request: fetch the
// reference image, compare it against the probe, and on acceptance classify
// the emotion and append an attendance record. Nothing is shared between
// executions.
func (s *attendanceServiceImpl) Authenticate(ctx context.Context, email string, probe []byte) (attendance.AuthenticateResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return attendance.AuthenticateResponse{}, err
	}

	reference, err := repo.Users.GetReferenceImage(ctx, email)
	if err != nil {
		if errors.Is(err, attendance.ErrUserNotFound) {
			return attendance.AuthenticateResponse{}, attendance.ErrUserNotFound
		}

		// A store failure must stay indistinguishable from an unknown user
		// for the caller. The real cause is already logged by the repository.
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
		}).Error("Reference image fetch failed, failing closed")
		return attendance.AuthenticateResponse{}, attendance.ErrUserNotFound
	}

	// The comparison can keep a CPU-heavy model busy for a while; the bounded
	// timeout is a hardening addition on top of the capability contract.
	matchCtx, cancel := context.WithTimeout(ctx, s.config.MatchTimeout)
	defer cancel()

	result, err := s.faceClient.Verify(matchCtx, probe, reference, faceapi.VerifyOptions{
		DetectorBackend:  s.config.DetectorBackend,
		EnforceDetection: true,
	})
	if err != nil {
		if errors.Is(err, faceapi.ErrNoFaceDetected) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"email":      email,
			}).Warn("Face could not be detected in probe or reference image")
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"email":      email,
				"error":      err.Error(),
			}).Error("Face comparison failed")
		}
		return attendance.AuthenticateResponse{}, attendance.ErrComparisonFailed
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"email":      email,
		"distance":   result.Distance,
		"threshold":  s.config.MatchThreshold,
	}).Debug("Face comparison completed")

	if result.Distance >= s.config.MatchThreshold {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
			"distance":   result.Distance,
		}).Warn("Face rejected, distance over threshold")
		return attendance.AuthenticateResponse{}, attendance.ErrFaceNotRecognized
	}

	emotion := s.classifyEmotion(ctx, requestID, probe)

	record := entity.AttendanceRecord{
		Email:     email,
		Timestamp: time.Now().Truncate(time.Second),
		Emotion:   emotion,
	}

	if err := repo.Attendance.Create(ctx, record); err != nil {
		// The accept decision is already made; a failed write is logged but
		// never retracts it.
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
			"emotion":    emotion,
			"error":      err.Error(),
		}).Error("Failed to record attendance for accepted authentication")
	}

	return attendance.AuthenticateResponse{
		Result:  "Autenticación exitosa",
		Emotion: emotion,
	}, nil
}

// classifyEmotion never gates the authentication: detection is best-effort
// here, unlike the comparison step, and any failure degrades to the fallback
// label.
func (s *attendanceServiceImpl) classifyEmotion(ctx context.Context, requestID string, probe []byte) string {
	analysis, err := s.faceClient.Analyze(ctx, probe, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Emotion analysis failed, using fallback label")
		return faceapi.FallbackEmotion
	}

	if !faceapi.IsKnownEmotion(analysis.DominantEmotion) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"label":      analysis.DominantEmotion,
		}).Warn("Unknown emotion label, using fallback label")
		return faceapi.FallbackEmotion
	}

	return analysis.DominantEmotion
}
