package attendance

import "time"

type AuthenticateRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthenticateResponse struct {
	Result  string `json:"result"`
	Emotion string `json:"emotion"`
}

type RecordResponse struct {
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Emotion   string    `json:"emotion"`
}

type RecordListResponse struct {
	Data []RecordResponse `json:"data"`
}
