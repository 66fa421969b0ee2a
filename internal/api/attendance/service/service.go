package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	attendanceRepository "FaceAttendance/internal/api/attendance/repository"
	"FaceAttendance/pkg/faceapi"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type AttendanceService interface {
	Authenticate(ctx context.Context, email string, probe []byte) (attendance.AuthenticateResponse, error)
	ListRecords(ctx context.Context, email string) (attendance.RecordListResponse, error)
}

// Config holds the pipeline knobs. MatchThreshold is the single tunable
// governing the false-accept/false-reject tradeoff; it is applied in exactly
// one place (Authenticate) and nowhere else.
type Config struct {
	MatchThreshold  float64
	DetectorBackend string
	MatchTimeout    time.Duration
}

func ConfigFromEnv() Config {
	cfg := Config{
		MatchThreshold:  0.7,
		DetectorBackend: "opencv",
		MatchTimeout:    30 * time.Second,
	}

	if raw := os.Getenv("FACE_MATCH_THRESHOLD"); raw != "" {
		if threshold, err := strconv.ParseFloat(raw, 64); err == nil && threshold > 0 {
			cfg.MatchThreshold = threshold
		}
	}

	if backend := os.Getenv("FACE_DETECTOR_BACKEND"); backend != "" {
		cfg.DetectorBackend = backend
	}

	if raw := os.Getenv("FACE_MATCH_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.MatchTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

type attendanceServiceImpl struct {
	log        *logrus.Logger
	repo       attendanceRepository.Repository
	faceClient faceapi.ItfFaceAPI
	config     Config
}

func New(
	log *logrus.Logger,
	repo attendanceRepository.Repository,
	faceClient faceapi.ItfFaceAPI,
	config Config,
) AttendanceService {
	return &attendanceServiceImpl{
		log:        log,
		repo:       repo,
		faceClient: faceClient,
		config:     config,
	}
}
