package models

import "time"

// AttendanceStatus представляет отметку посещаемости участника на тренировке.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceJustified AttendanceStatus = "justified"
)

// ValidAttendanceStatus проверяет, что строка является известной отметкой.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceJustified:
		return true
	}
	return false
}

// TrainingSession представляет одну тренировку с картой посещаемости.
// Отсутствие записи в Attendance означает, что участник не отмечен.
type TrainingSession struct {
	ID         string                      `json:"id"`
	Date       time.Time                   `json:"date"`
	Time       string                      `json:"time"`
	Location   string                      `json:"location"`
	Notes      string                      `json:"notes,omitempty"`
	Attendance map[string]AttendanceStatus `json:"attendance"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// SessionStats - счётчики посещаемости одной тренировки.
// Total - текущий размер ростера, а не размер на момент тренировки.
type SessionStats struct {
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Justified int `json:"justified"`
	Total     int `json:"total"`
}
