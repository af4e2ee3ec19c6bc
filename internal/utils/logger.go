package utils

import (
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

// LogSwallowed records a best-effort side effect that failed without
// escalating. Heartbeat updates use this: they must never fail a booking.
func LogSwallowed(requestID, module, action string, err error) {
	if err == nil {
		return
	}
	LogEvent(requestID, module, action, "swallowed: "+err.Error())
}
