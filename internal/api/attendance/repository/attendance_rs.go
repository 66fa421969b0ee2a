package attendanceRepository

import (
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type attendanceDB struct {
	Correo  sql.NullString `db:"correo"`
	Fecha   sql.NullTime   `db:"fecha"`
	Emocion sql.NullString `db:"emocion"`
}

// Create appends one attendance row. The log is append-only and carries no
// dedup: a client retry produces a second row with a fresh timestamp.
func (r *attendanceRepository) Create(c context.Context, record entity.AttendanceRecord) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"correo":  record.Email,
		"fecha":   record.Timestamp,
		"emocion": record.Emotion,
	}

	query, args, err := sqlx.Named(queryInsertAttendance, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for attendance insert")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when recording attendance")
		return err
	}

	return nil
}

func (r *attendanceRepository) ListByEmail(c context.Context, email string) ([]entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"correo": email,
	}

	query, args, err := sqlx.Named(queryListAttendanceByEmail, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByEmail named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing attendance records")
		return nil, err
	}
	defer rows.Close()

	var records []entity.AttendanceRecord
	for rows.Next() {
		var row attendanceDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to scan attendance row")
			return nil, err
		}

		records = append(records, makeAttendanceRecord(row))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func makeAttendanceRecord(row attendanceDB) entity.AttendanceRecord {
	record := entity.AttendanceRecord{
		Email:   row.Correo.String,
		Emotion: row.Emocion.String,
	}

	if row.Fecha.Valid {
		record.Timestamp = row.Fecha.Time
	} else {
		record.Timestamp = time.Time{}
	}

	return record
}
