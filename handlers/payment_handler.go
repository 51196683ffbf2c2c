package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: ps,
	}
}

func (h *PaymentHandler) GenerateMonthlyPayments(w http.ResponseWriter, r *http.Request) {
	created, err := h.paymentService.GenerateMonthlyPayments(r.Context(), time.Now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"generated": len(created),
		"payments":  created,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var input services.AddPaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.AddPayment(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.GetPaymentByID(r.Context(), paymentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetAllPayments поддерживает фильтры ?status= и ?member_id=.
func (h *PaymentHandler) GetAllPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []models.Payment
		err      error
	)

	status := r.URL.Query().Get("status")
	memberID := r.URL.Query().Get("member_id")
	switch {
	case status != "":
		payments, err = h.paymentService.GetPaymentsByStatus(r.Context(), models.PaymentStatus(status))
	case memberID != "":
		payments, err = h.paymentService.GetPaymentsByMember(r.Context(), memberID)
	default:
		payments, err = h.paymentService.GetAllPayments(r.Context())
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payments": payments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MarkPaidInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.MarkPaid(r.Context(), paymentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Reason == "" {
		badRequestResponse(w, r, errors.New("cancellation reason is required"))
		return
	}

	payment, err := h.paymentService.Cancel(r.Context(), paymentID, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) ReactivatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.Reactivate(r.Context(), paymentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) GetOverduePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.paymentService.GetOverduePayments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payments": payments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) GetFinancialStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.paymentService.GetFinancialStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"stats": stats}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		badRequestResponse(w, r, errors.New("month query parameter must be between 1 and 12"))
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 {
		badRequestResponse(w, r, errors.New("year query parameter is invalid"))
		return
	}

	report, err := h.paymentService.GetMonthlyReport(r.Context(), time.Month(month), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"report": report}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
