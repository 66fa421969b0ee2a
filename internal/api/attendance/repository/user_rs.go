package attendanceRepository

import (
	"FaceAttendance/internal/api/attendance"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type referenceImageDB struct {
	Imagen []byte `db:"imagen"`
}

// GetReferenceImage fetches the enrolled reference photo for an identity.
// Unknown identities surface as attendance.ErrUserNotFound.
func (r *userRepository) GetReferenceImage(c context.Context, email string) ([]byte, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"correo": email,
	}

	query, args, err := sqlx.Named(queryGetReferenceImage, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetReferenceImage named query preparation err")

		return nil, err
	}

	query = r.q.Rebind(query)

	var row referenceImageDB
	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"email":      email,
			}).Warn("GetReferenceImage no enrolled user found")
			return nil, attendance.ErrUserNotFound
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching reference image")

		return nil, err
	}

	if len(row.Imagen) == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
		}).Warn("GetReferenceImage enrolled user has empty reference image")
		return nil, attendance.ErrUserNotFound
	}

	return row.Imagen, nil
}
