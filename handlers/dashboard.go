package handlers

import (
	"net/http"

	"github.com/Dosada05/club-system/services"
)

type DashboardHandler struct {
	memberService    services.MemberService
	paymentService   services.PaymentService
	equipmentService services.EquipmentService
	reminderService  services.ReminderService
}

func NewDashboardHandler(
	ms services.MemberService,
	ps services.PaymentService,
	es services.EquipmentService,
	rs services.ReminderService,
) *DashboardHandler {
	return &DashboardHandler{
		memberService:    ms,
		paymentService:   ps,
		equipmentService: es,
		reminderService:  rs,
	}
}

// GetDashboard собирает сводку по клубу одним запросом.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	rosterSize, err := h.memberService.RosterSize(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	financial, err := h.paymentService.GetFinancialStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	equipment, err := h.equipmentService.GetEquipmentStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	reminders, err := h.reminderService.GetReminders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"roster_size": rosterSize,
		"financial":   financial,
		"equipment":   equipment,
		"reminders":   reminders,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
