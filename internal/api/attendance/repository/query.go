package attendanceRepository

const (
	queryGetReferenceImage = `
SELECT imagen FROM usuarios
    WHERE correo = :correo`

	queryInsertAttendance = `
INSERT INTO registro (correo, fecha, emocion)
VALUES (:correo, :fecha, :emocion)`

	queryListAttendanceByEmail = `
SELECT correo, fecha, emocion FROM registro
    WHERE correo = :correo
ORDER BY fecha DESC`
)
