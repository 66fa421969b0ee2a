package attendance

import (
	"FaceAttendance/pkg/response"
	"net/http"
)

// Error messages are part of the public contract consumed by the existing
// frontend, hence the Spanish bodies.
var (
	ErrMissingParameters = response.NewError(http.StatusBadRequest, "Faltan parámetros")
	ErrUserNotFound      = response.NewError(http.StatusNotFound, "Usuario no encontrado")
	ErrFaceNotRecognized = response.NewError(http.StatusUnauthorized, "No se reconoce al usuario")
	ErrComparisonFailed  = response.NewError(http.StatusInternalServerError, "Error en la comparación")
)
