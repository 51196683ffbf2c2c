package handlers

import (
	"net/http"

	"github.com/Dosada05/club-system/services"
)

type CommunicationHandler struct {
	communicationService services.CommunicationService
}

func NewCommunicationHandler(cs services.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{
		communicationService: cs,
	}
}

func (h *CommunicationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var input services.SendMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.communicationService.SendMessage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": message}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMessages поддерживает фильтры ?member_id= и ?include_expired=true.
func (h *CommunicationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("member_id")
	if memberID != "" {
		messages, err := h.communicationService.GetMessagesForMember(r.Context(), memberID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		response := jsonResponse{"messages": messages}
		if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	includeExpired := r.URL.Query().Get("include_expired") == "true"
	messages, err := h.communicationService.GetMessages(r.Context(), includeExpired)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"messages": messages}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunicationHandler) GetMessageByID(w http.ResponseWriter, r *http.Request) {
	messageID, err := getIDFromURL(r, "messageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.communicationService.GetMessageByID(r.Context(), messageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": message}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunicationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	messageID, err := getIDFromURL(r, "messageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MemberID string `json:"member_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.communicationService.MarkRead(r.Context(), messageID, input.MemberID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": message}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunicationHandler) MarkAcknowledged(w http.ResponseWriter, r *http.Request) {
	messageID, err := getIDFromURL(r, "messageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MemberID string `json:"member_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.communicationService.MarkAcknowledged(r.Context(), messageID, input.MemberID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": message}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunicationHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := getIDFromURL(r, "messageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.communicationService.DeleteMessage(r.Context(), messageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CommunicationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	memberID, err := getIDFromURL(r, "memberID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	count, err := h.communicationService.GetUnreadCount(r.Context(), memberID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"unread": count}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
