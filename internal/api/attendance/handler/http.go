package attendanceHandler

import (
	attendanceService "FaceAttendance/internal/api/attendance/service"
	"FaceAttendance/internal/middleware"
	"FaceAttendance/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AttendanceHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	attendanceService attendanceService.AttendanceService
	utils             utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as attendanceService.AttendanceService,
	utils utils.IUtils,
) *AttendanceHandler {
	return &AttendanceHandler{
		log:               log,
		validator:         validator,
		middleware:        middleware,
		attendanceService: as,
		utils:             utils,
	}
}

func (h *AttendanceHandler) Start(srv fiber.Router) {
	srv.Post("/authenticate", h.middleware.NewRateLimiter, h.HandleAuthenticate)

	records := srv.Group("/attendance")
	records.Get("/:email", h.HandleListAttendance)
}
