package handlers

import (
	"net/http"

	"github.com/Dosada05/club-system/services"
)

type EquipmentHandler struct {
	equipmentService services.EquipmentService
}

func NewEquipmentHandler(es services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService: es,
	}
}

func (h *EquipmentHandler) AddEquipment(w http.ResponseWriter, r *http.Request) {
	var input services.AddEquipmentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	equipment, err := h.equipmentService.AddEquipment(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetEquipmentByID(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	equipment, err := h.equipmentService.GetEquipmentByID(r.Context(), equipmentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetAllEquipment(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.equipmentService.GetAllEquipment(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateEquipmentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	equipment, err := h.equipmentService.UpdateEquipment(r.Context(), equipmentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.equipmentService.DeleteEquipment(r.Context(), equipmentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EquipmentHandler) MarkMaintenanceDone(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	equipment, err := h.equipmentService.MarkMaintenanceDone(r.Context(), equipmentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetMaintenanceDue(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.equipmentService.GetMaintenanceDue(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": equipment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLoanInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	loan, err := h.equipmentService.CreateLoan(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"loan": loan}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	loan, err := h.equipmentService.ReturnLoan(r.Context(), loanID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"loan": loan}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetAllLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.equipmentService.GetAllLoans(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"loans": loans}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.equipmentService.GetOverdueLoans(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"loans": loans}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetEquipmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.equipmentService.GetEquipmentStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"stats": stats}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
