package common

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteErrorResponse 依錯誤類型寫入狀態碼與 ErrorResponse
func WriteErrorResponse(w http.ResponseWriter, err error, debug bool) int {
	status, body := ToErrorResponse(err, debug)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
	return status
}
