package attendanceHandler

import (
	"FaceAttendance/internal/api/attendance"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/handlerUtil"
	"FaceAttendance/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AttendanceHandler) HandleAuthenticate(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing authentication request")

	email := ctx.FormValue("email")
	file, err := ctx.FormFile("image")
	if err != nil || email == "" {
		h.log.WithFields(log.Fields{
			"request_id":    requestID,
			"path":          ctx.Path(),
			"email_present": email != "",
			"image_present": err == nil,
		}).Warn("Missing image or email in authentication request")
		return errHandler.Handle(ctx, requestID, attendance.ErrMissingParameters, ctx.Path(), "parse_multipart_form")
	}

	req := attendance.AuthenticateRequest{Email: email}
	if err := h.validator.Struct(req); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Warn("Invalid email in authentication request")
		return errHandler.Handle(ctx, requestID, attendance.ErrMissingParameters, ctx.Path(), "validate_request")
	}

	if err := h.utils.ValidateImageFile(file); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
			"error":      err.Error(),
		}).Warn("Invalid probe image upload")
		return errHandler.Handle(ctx, requestID, attendance.ErrMissingParameters, ctx.Path(), "validate_image_file")
	}

	probe, err := h.utils.ReadMultipartFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_probe_image")
	}

	res, err := h.attendanceService.Authenticate(c, email, probe)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "authenticate")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"email":      email,
			"emotion":    res.Emotion,
		}).Info("Authentication successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AttendanceHandler) HandleListAttendance(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	email := ctx.Params("email")
	if email == "" {
		return errHandler.Handle(ctx, requestID, attendance.ErrMissingParameters, ctx.Path(), "parse_path_params")
	}

	res, err := h.attendanceService.ListRecords(c, email)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_attendance")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
