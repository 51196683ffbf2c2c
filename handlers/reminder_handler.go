package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/club-system/services"
)

type ReminderHandler struct {
	reminderService services.ReminderService
	paymentService  services.PaymentService
}

func NewReminderHandler(rs services.ReminderService, ps services.PaymentService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: rs,
		paymentService:  ps,
	}
}

func (h *ReminderHandler) GetReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminderService.GetReminders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"reminders":    reminders,
		"generated_at": time.Now().UTC(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RunOverdueCheck вручную запускает перевод просроченных платежей
// и рассылку напоминаний, не дожидаясь планировщика.
func (h *ReminderHandler) RunOverdueCheck(w http.ResponseWriter, r *http.Request) {
	transitioned, err := h.paymentService.CheckOverduePayments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	published, err := h.reminderService.PublishReminders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"transitioned": transitioned,
		"reminders":    published,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
